package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSpeech()
	c.normalizeChannels()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSpeech() {
	c.Speech.APIKey = strings.TrimSpace(c.Speech.APIKey)
	if c.Speech.APIKey == "" {
		if value, ok := os.LookupEnv("AZURE_SPEECH_KEY"); ok {
			c.Speech.APIKey = strings.TrimSpace(value)
		}
	}
	c.Speech.Region = strings.ToLower(strings.TrimSpace(c.Speech.Region))
	if c.Speech.Region == "" {
		if value, ok := os.LookupEnv("AZURE_SPEECH_REGION"); ok {
			c.Speech.Region = strings.ToLower(strings.TrimSpace(value))
		}
	}
	if c.Speech.RequestTimeout <= 0 {
		c.Speech.RequestTimeout = defaultSpeechRequestTimeout
	}
}

func (c *Config) normalizeChannels() {
	for i := range c.Channels {
		ch := &c.Channels[i]
		ch.Name = strings.TrimSpace(ch.Name)
		ch.URL = strings.TrimSpace(ch.URL)
		ch.Language = strings.TrimSpace(ch.Language)
		if ch.Language == "" {
			ch.Language = defaultChannelLanguage
		}
		if ch.MaxEpisodes <= 0 {
			ch.MaxEpisodes = defaultChannelMaxEpisodes
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
