package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"watchmigrate/internal/config"
	"watchmigrate/internal/testsupport"
)

const (
	movieListing = `<MediaContainer>
<Video ratingKey="10" title="Heat" guid="com.plexapp.agents.imdb://tt0113277?lang=en" viewCount="1"/>
<Video ratingKey="11" title="Missing Movie" guid="com.plexapp.agents.imdb://tt9999999?lang=en" viewCount="1"/>
</MediaContainer>`
	showListing = `<MediaContainer>
<Directory ratingKey="20" title="Show A" guid="com.plexapp.agents.thetvdb://100?lang=en" viewedLeafCount="1"/>
</MediaContainer>`
	episodeListing = `<MediaContainer>
<Video ratingKey="21" title="Pilot" grandparentTitle="Show A" guid="com.plexapp.agents.thetvdb://100/1/1?lang=en" parentIndex="1" index="1" viewCount="1"/>
</MediaContainer>`
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	plexURL    string
	jellyfin   *testsupport.JellyfinServer
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	plexServer := testsupport.NewPlexServer(t, testsupport.PlexLibrary{
		"Movies":   {"1": movieListing},
		"TV Shows": {"2": showListing, "4": episodeListing},
	})
	jf := testsupport.NewJellyfinServer(t, "alice",
		[]map[string]any{
			{"Id": "m1", "Name": "Heat", "Type": "Movie", "ProviderIds": map[string]string{"Imdb": "tt0113277"}, "UserData": map[string]any{"Played": false}},
			{"Id": "e1", "Name": "Pilot", "Type": "Episode", "SeriesName": "Show A", "SeriesId": "s1", "ParentIndexNumber": 1, "IndexNumber": 1},
		},
		map[string]map[string]string{"s1": {"Tvdb": "100"}},
	)

	base := []testsupport.ConfigOption{
		testsupport.WithPlexURL(plexServer.URL),
		testsupport.WithJellyfinURL(jf.URL),
		testsupport.WithLibraries("Movies", "TV Shows", ""),
	}
	cfg := testsupport.NewConfig(t, append(base, opts...)...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, plexURL: plexServer.URL, jellyfin: jf}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
