package testsupport

import (
	"path/filepath"
	"testing"

	"watchmigrate/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Credentials are filled with placeholders so ValidateConnections passes.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Plex.URL = "http://127.0.0.1:32400"
	cfgVal.Plex.Token = "plex-token"
	cfgVal.Jellyfin.URL = "http://127.0.0.1:8096"
	cfgVal.Jellyfin.APIKey = "jellyfin-key"
	cfgVal.Jellyfin.User = "alice"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPlexURL points the source at a test server.
func WithPlexURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plex.URL = url
	}
}

// WithPlexDatabase switches the source to a library database file.
func WithPlexDatabase(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plex.DatabasePath = path
	}
}

// WithJellyfinURL points the target at a test server.
func WithJellyfinURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Jellyfin.URL = url
	}
}

// WithLibraries overrides the source library names.
func WithLibraries(movies, shows, anime string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Libraries = config.Libraries{Movies: movies, Shows: shows, Anime: anime}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
