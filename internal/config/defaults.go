package config

const (
	defaultDataDir              = "~/.local/share/podscribe"
	defaultOutputDir            = "~/.local/share/podscribe/output"
	defaultLogDir               = "~/.local/share/podscribe/logs"
	defaultSpeechRequestTimeout = 30
	defaultChannelLanguage      = "auto"
	defaultChannelMaxEpisodes   = 5
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Speech: Speech{
			RequestTimeout: defaultSpeechRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
