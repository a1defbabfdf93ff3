package config

import (
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. Speech credentials are not
// required here: commands that never touch the remote service (pending,
// failed, status) must work without them, so the speech client enforces
// credentials at construction instead.
func (c *Config) Validate() error {
	return c.validateChannels()
}

func (c *Config) validateChannels() error {
	seen := make(map[string]struct{}, len(c.Channels))
	for i, ch := range c.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channels[%d].name must be set", i)
		}
		if _, dup := seen[ch.Name]; dup {
			return fmt.Errorf("channels[%d].name %q is duplicated", i, ch.Name)
		}
		seen[ch.Name] = struct{}{}
		if ch.URL == "" {
			return fmt.Errorf("channels[%d] (%s): url must be set", i, ch.Name)
		}
		parsed, err := url.Parse(ch.URL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("channels[%d] (%s): url %q is not an absolute URL", i, ch.Name, ch.URL)
		}
	}
	return nil
}
