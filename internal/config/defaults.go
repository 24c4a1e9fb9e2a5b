package config

const (
	defaultConfigPath             = "~/.config/watchmigrate/config.toml"
	defaultLogDir                 = "~/.local/share/watchmigrate/logs"
	defaultStateDir               = "~/.local/share/watchmigrate"
	defaultPlexAccountID          = 1
	defaultPlexTimeoutSeconds     = 30
	defaultJellyfinTimeoutSeconds = 60
	defaultJellyfinPageSize       = 500
	defaultMoviesLibrary          = "Movies"
	defaultShowsLibrary           = "TV Shows"
	defaultAnimeLibrary           = "Anime"
	defaultTitleKeyLength         = 16
	defaultSeriesCacheSize        = 1024
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultJellyfinRequestsPerSec = 0
	defaultNtfyTimeoutSeconds     = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Plex: Plex{
			AccountID:      defaultPlexAccountID,
			TimeoutSeconds: defaultPlexTimeoutSeconds,
		},
		Jellyfin: Jellyfin{
			TimeoutSeconds:    defaultJellyfinTimeoutSeconds,
			PageSize:          defaultJellyfinPageSize,
			RequestsPerSecond: defaultJellyfinRequestsPerSec,
		},
		Libraries: Libraries{
			Movies: defaultMoviesLibrary,
			Shows:  defaultShowsLibrary,
			Anime:  defaultAnimeLibrary,
		},
		Matching: Matching{
			TitleKeyLength:  defaultTitleKeyLength,
			SeriesCacheSize: defaultSeriesCacheSize,
		},
		Notifications: Notifications{
			TimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
