package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is structurally usable. It does not
// require connection credentials; see ValidateConnections.
func (c *Config) Validate() error {
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateJellyfin(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateConnections ensures both catalogs can be reached: a Plex URL and
// token or a Plex database path, plus a Jellyfin URL, API key and user.
func (c *Config) ValidateConnections() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.UsesPlexDatabase() {
		if c.Plex.URL == "" {
			return fmt.Errorf("plex.url is required (or set plex.database_path). Set PLEX_URL or edit %s", c.configHint())
		}
		if c.Plex.Token == "" {
			return fmt.Errorf("plex.token is required. Set PLEX_TOKEN or edit %s", c.configHint())
		}
	}
	if c.Jellyfin.URL == "" {
		return fmt.Errorf("jellyfin.url is required. Set JELLYFIN_URL or edit %s", c.configHint())
	}
	if c.Jellyfin.APIKey == "" {
		return fmt.Errorf("jellyfin.api_key is required. Set JELLYFIN_API_KEY or edit %s", c.configHint())
	}
	if c.Jellyfin.User == "" {
		return fmt.Errorf("jellyfin.user is required. Set JELLYFIN_USER or edit %s", c.configHint())
	}
	if c.Libraries.Movies == "" && c.Libraries.Shows == "" && c.Libraries.Anime == "" {
		return errors.New("libraries: at least one of movies, shows or anime must be named")
	}
	return nil
}

func (c *Config) validatePlex() error {
	if c.Plex.URL != "" {
		if err := validateURL(c.Plex.URL); err != nil {
			return fmt.Errorf("plex.url: %w", err)
		}
	}
	if c.Plex.TimeoutSeconds < 0 {
		return errors.New("plex.timeout_seconds must be positive")
	}
	if c.Plex.AccountID < 0 {
		return errors.New("plex.account_id must be positive")
	}
	return nil
}

func (c *Config) validateJellyfin() error {
	if c.Jellyfin.URL != "" {
		if err := validateURL(c.Jellyfin.URL); err != nil {
			return fmt.Errorf("jellyfin.url: %w", err)
		}
	}
	if c.Jellyfin.TimeoutSeconds < 0 {
		return errors.New("jellyfin.timeout_seconds must be positive")
	}
	if c.Jellyfin.PageSize < 0 {
		return errors.New("jellyfin.page_size must be positive")
	}
	if c.Jellyfin.RequestsPerSecond < 0 {
		return errors.New("jellyfin.requests_per_second must be zero (unlimited) or positive")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.TitleKeyLength < 0 {
		return errors.New("matching.title_key_length must be positive")
	}
	if c.Matching.SeriesCacheSize < 0 {
		return errors.New("matching.series_cache_size must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic != "" {
		if err := validateURL(c.Notifications.NtfyTopic); err != nil {
			return fmt.Errorf("notifications.ntfy_topic: %w", err)
		}
	}
	if c.Notifications.TimeoutSeconds < 0 {
		return errors.New("notifications.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

func (c *Config) configHint() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return defaultConfigPath
	}
	return path
}
