package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains local directories used by the CLI.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
	EnvFile  string `toml:"env_file"`
}

// Plex contains source catalog settings. Either URL and Token (HTTP API) or
// DatabasePath (offline library database) must be set.
type Plex struct {
	URL            string `toml:"url"`
	Token          string `toml:"token"`
	DatabasePath   string `toml:"database_path"`
	AccountID      int    `toml:"account_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Jellyfin contains target catalog settings.
type Jellyfin struct {
	URL               string  `toml:"url"`
	APIKey            string  `toml:"api_key"`
	User              string  `toml:"user"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	PageSize          int     `toml:"page_size"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Libraries names the source libraries to migrate. An empty name skips that
// media kind.
type Libraries struct {
	Movies string `toml:"movies"`
	Shows  string `toml:"shows"`
	Anime  string `toml:"anime"`
}

// Matching tunes the reconciliation heuristics.
type Matching struct {
	TitleKeyLength  int `toml:"title_key_length"`
	SeriesCacheSize int `toml:"series_cache_size"`
}

// Run contains per-invocation behaviour toggles. CLI flags override them.
type Run struct {
	Verbose  bool `toml:"verbose"`
	FailFast bool `toml:"fail_fast"`
	DryRun   bool `toml:"dry_run"`
	Insecure bool `toml:"insecure"`
}

// Notifications configures optional ntfy delivery of run results.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for watchmigrate.
//
// Configuration sections by subsystem:
//   - Paths: log and lock directories plus an optional dotenv file
//   - Plex: source catalog connection (HTTP API or library database)
//   - Jellyfin: target catalog connection and request pacing
//   - Libraries: source library names per media kind
//   - Matching: title key length and series lookup cache size
//   - Run: verbose, fail-fast, dry-run and TLS verification toggles
//   - Notifications: ntfy topic for completion and failure messages
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Plex          Plex          `toml:"plex"`
	Jellyfin      Jellyfin      `toml:"jellyfin"`
	Libraries     Libraries     `toml:"libraries"`
	Matching      Matching      `toml:"matching"`
	Run           Run           `toml:"run"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. Connection credentials are not required
// here; call ValidateConnections once command-line overrides are applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("watchmigrate.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// UsesPlexDatabase reports whether the source is read from the Plex library
// database file instead of the HTTP API.
func (c *Config) UsesPlexDatabase() bool {
	return strings.TrimSpace(c.Plex.DatabasePath) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
