package testsupport

import (
	"path/filepath"
	"testing"

	"podscribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.OutputDir = filepath.Join(base, "transcripts")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Speech.APIKey = "test-key"
	cfg.Speech.Region = "eastus"
	cfg.Channels = []config.Channel{
		{Name: "daily-tech", URL: "https://example.com/feed.xml", Language: "auto", MaxEpisodes: 5},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithChannels overrides the configured channels on the test config.
func WithChannels(channels ...config.Channel) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Channels = channels
	}
}

// WithSpeechCredentials sets explicit speech credentials on the test config.
func WithSpeechCredentials(key, region string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Speech.APIKey = key
		cfg.Speech.Region = region
	}
}
