package config

const (
	defaultLibraryDir     = "~/.local/share/shadowlist"
	defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"
	defaultTokenPath      = "~/.config/shadowlist/token.json"
	defaultPageSize       = 50
	defaultLogLevel       = "info"
	defaultLogFormat      = "auto"
	defaultIndexEnabled   = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
		},
		YouTube: YouTube{
			BaseURL:   defaultYouTubeBaseURL,
			TokenPath: defaultTokenPath,
			PageSize:  defaultPageSize,
		},
		Index: Index{
			Enabled: defaultIndexEnabled,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
