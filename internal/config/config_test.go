package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podscribe/internal/config"
)

func TestLoadDefaultConfigUsesEnvCredentialsAndExpandsPaths(t *testing.T) {
	t.Setenv("AZURE_SPEECH_KEY", "test-key")
	t.Setenv("AZURE_SPEECH_REGION", "EastUS")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "podscribe")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.OutputDir != filepath.Join(wantData, "output") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Speech.APIKey != "test-key" {
		t.Fatalf("expected speech key from env, got %q", cfg.Speech.APIKey)
	}
	if cfg.Speech.Region != "eastus" {
		t.Fatalf("expected region lowercased, got %q", cfg.Speech.Region)
	}
	if cfg.Speech.RequestTimeout != 30 {
		t.Fatalf("unexpected request timeout: %d", cfg.Speech.RequestTimeout)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "podscribe.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadParsesChannelsAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[speech]
api_key = "abc"
region = "westeurope"

[[channels]]
name = "nopriors"
url = "https://example.com/feed.xml"
language = "en-US"
max_episodes = 2

[[channels]]
name = "daily"
url = "https://example.org/rss"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to load, got %q exists=%v", path, resolved, exists)
	}
	if len(cfg.Channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(cfg.Channels))
	}
	first := cfg.Channels[0]
	if first.Name != "nopriors" || first.Language != "en-US" || first.MaxEpisodes != 2 {
		t.Fatalf("unexpected first channel: %+v", first)
	}
	second := cfg.Channels[1]
	if second.Language != "auto" {
		t.Fatalf("expected language default auto, got %q", second.Language)
	}
	if second.MaxEpisodes != 5 {
		t.Fatalf("expected max_episodes default 5, got %d", second.MaxEpisodes)
	}

	if _, ok := cfg.ChannelByName("daily"); !ok {
		t.Fatal("expected ChannelByName to find daily")
	}
	if _, ok := cfg.ChannelByName("missing"); ok {
		t.Fatal("expected ChannelByName miss for unknown channel")
	}
}

func TestLoadRejectsInvalidChannels(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "missing name",
			content: `
[[channels]]
url = "https://example.com/feed.xml"
`,
			want: "name must be set",
		},
		{
			name: "missing url",
			content: `
[[channels]]
name = "a"
`,
			want: "url must be set",
		},
		{
			name: "relative url",
			content: `
[[channels]]
name = "a"
url = "feed.xml"
`,
			want: "not an absolute URL",
		},
		{
			name: "duplicate names",
			content: `
[[channels]]
name = "a"
url = "https://example.com/1.xml"

[[channels]]
name = "a"
url = "https://example.com/2.xml"
`,
			want: "duplicated",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[speech]") {
		t.Fatalf("sample config missing speech section")
	}
}
