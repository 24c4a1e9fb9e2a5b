package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.loadEnvFile(); err != nil {
		return err
	}
	if err := c.normalizePlex(); err != nil {
		return err
	}
	c.normalizeJellyfin()
	c.normalizeLibraries()
	c.normalizeMatching()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.EnvFile, err = expandPath(strings.TrimSpace(c.Paths.EnvFile)); err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	return nil
}

// loadEnvFile populates the process environment from a dotenv file before
// the environment fallbacks run. Variables already set win. An explicitly
// configured file must exist; ./.env is loaded only when present.
func (c *Config) loadEnvFile() error {
	if c.Paths.EnvFile != "" {
		if err := godotenv.Load(c.Paths.EnvFile); err != nil {
			return fmt.Errorf("paths.env_file: load %s: %w", c.Paths.EnvFile, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat .env: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func (c *Config) normalizePlex() error {
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(envFallback(c.Plex.URL, "PLEX_URL")), "/")
	c.Plex.Token = strings.TrimSpace(envFallback(c.Plex.Token, "PLEX_TOKEN"))
	var err error
	if c.Plex.DatabasePath, err = expandPath(strings.TrimSpace(c.Plex.DatabasePath)); err != nil {
		return fmt.Errorf("plex.database_path: %w", err)
	}
	if c.Plex.AccountID == 0 {
		c.Plex.AccountID = defaultPlexAccountID
	}
	if c.Plex.TimeoutSeconds == 0 {
		c.Plex.TimeoutSeconds = defaultPlexTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeJellyfin() {
	c.Jellyfin.URL = strings.TrimRight(strings.TrimSpace(envFallback(c.Jellyfin.URL, "JELLYFIN_URL")), "/")
	c.Jellyfin.APIKey = strings.TrimSpace(envFallback(c.Jellyfin.APIKey, "JELLYFIN_API_KEY"))
	c.Jellyfin.User = strings.TrimSpace(envFallback(c.Jellyfin.User, "JELLYFIN_USER"))
	if c.Jellyfin.TimeoutSeconds == 0 {
		c.Jellyfin.TimeoutSeconds = defaultJellyfinTimeoutSeconds
	}
	if c.Jellyfin.PageSize == 0 {
		c.Jellyfin.PageSize = defaultJellyfinPageSize
	}
}

// normalizeLibraries only trims; an empty name is a deliberate skip.
func (c *Config) normalizeLibraries() {
	c.Libraries.Movies = strings.TrimSpace(c.Libraries.Movies)
	c.Libraries.Shows = strings.TrimSpace(c.Libraries.Shows)
	c.Libraries.Anime = strings.TrimSpace(c.Libraries.Anime)
}

func (c *Config) normalizeMatching() {
	if c.Matching.TitleKeyLength == 0 {
		c.Matching.TitleKeyLength = defaultTitleKeyLength
	}
	if c.Matching.SeriesCacheSize == 0 {
		c.Matching.SeriesCacheSize = defaultSeriesCacheSize
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(envFallback(c.Notifications.NtfyTopic, "NTFY_TOPIC"))
	if c.Notifications.TimeoutSeconds == 0 {
		c.Notifications.TimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envFallback(value, key string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return env
	}
	return value
}
