package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBrokenConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"nil backend", func(c *Config) { c.Backend = nil }},
		{"bad base URL", func(c *Config) { c.Backend.BaseURL = "not a url" }},
		{"http socket URL", func(c *Config) { c.Backend.SocketURL = "http://localhost/ws" }},
		{"zero request timeout", func(c *Config) { c.Backend.RequestTimeout = 0 }},
		{"nil store", func(c *Config) { c.Store = nil }},
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"nil workspace", func(c *Config) { c.Workspace = nil }},
		{"negative navigate delay", func(c *Config) { c.Workspace.NavigateDelay = -time.Second }},
		{"zero watch debounce", func(c *Config) { c.Workspace.WatchDebounce = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("CODELAB_BASE_URL", "https://lessons.example.com")
	t.Setenv("CODELAB_SOCKET_URL", "wss://lessons.example.com/ws")
	t.Setenv("CODELAB_REQUEST_TIMEOUT", "5s")

	cfg := LoadFromEnv()
	if cfg.Backend.BaseURL != "https://lessons.example.com" {
		t.Errorf("base URL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.SocketURL != "wss://lessons.example.com/ws" {
		t.Errorf("socket URL = %q", cfg.Backend.SocketURL)
	}
	if cfg.Backend.RequestTimeout != 5*time.Second {
		t.Errorf("request timeout = %v", cfg.Backend.RequestTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("env config invalid: %v", err)
	}
}

func TestLoadFromEnvIgnoresUnparseableDurations(t *testing.T) {
	t.Setenv("CODELAB_REQUEST_TIMEOUT", "soon")

	cfg := LoadFromEnv()
	if cfg.Backend.RequestTimeout != DefaultConfig().Backend.RequestTimeout {
		t.Errorf("bad duration overrode the default: %v", cfg.Backend.RequestTimeout)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"backend": {"base_url": "https://api.example.com", "request_timeout": "10s"},
		"workspace": {"navigate_delay": "500ms"}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Backend.BaseURL != "https://api.example.com" {
		t.Errorf("base URL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.RequestTimeout != 10*time.Second {
		t.Errorf("request timeout = %v", cfg.Backend.RequestTimeout)
	}
	if cfg.Workspace.NavigateDelay != 500*time.Millisecond {
		t.Errorf("navigate delay = %v", cfg.Workspace.NavigateDelay)
	}
	// Untouched sections keep their defaults.
	if cfg.Store.Path != DefaultConfig().Store.Path {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFallsBackOnFileError(t *testing.T) {
	t.Setenv("CODELAB_BASE_URL", "https://env.example.com")

	cfg := Load(filepath.Join(t.TempDir(), "absent.json"))
	if cfg.Backend.BaseURL != "https://env.example.com" {
		t.Errorf("base URL = %q, want env value", cfg.Backend.BaseURL)
	}
}
