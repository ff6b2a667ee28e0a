package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config is the single source of backend endpoints and local paths. The
// API origin lives here and nowhere else; components receive it injected.
type Config struct {
	Backend   *BackendConfig   `json:"backend"`
	Store     *StoreConfig     `json:"store"`
	Workspace *WorkspaceConfig `json:"workspace"`
}

// BackendConfig addresses the external lesson platform.
type BackendConfig struct {
	BaseURL        string        `json:"base_url"`
	SocketURL      string        `json:"socket_url"`
	RequestTimeout time.Duration `json:"request_timeout"`
}

// StoreConfig locates the local session storage.
type StoreConfig struct {
	Path    string        `json:"path"`
	Timeout time.Duration `json:"timeout"`
}

// WorkspaceConfig tunes the lesson workspace behavior.
type WorkspaceConfig struct {
	// ScratchDir is where workspace files are materialized for editing.
	// Empty means a per-session temp directory.
	ScratchDir string `json:"scratch_dir"`

	// NavigateDelay is how long a "correct" submit result stays on screen
	// before the workspace navigates away.
	NavigateDelay time.Duration `json:"navigate_delay"`

	// WatchDebounce coalesces bursts of editor write events into one
	// content-change observation.
	WatchDebounce time.Duration `json:"watch_debounce"`

	// ResizeDebounce coalesces terminal resize notifications.
	ResizeDebounce time.Duration `json:"resize_debounce"`
}

// DefaultConfig returns working defaults for a locally hosted backend.
func DefaultConfig() *Config {
	return &Config{
		Backend: &BackendConfig{
			BaseURL:        "http://localhost:8080",
			SocketURL:      "ws://localhost:8080/ws",
			RequestTimeout: 30 * time.Second,
		},
		Store: &StoreConfig{
			Path:    "./codelab.db",
			Timeout: 30 * time.Second,
		},
		Workspace: &WorkspaceConfig{
			ScratchDir:     "",
			NavigateDelay:  2 * time.Second,
			WatchDebounce:  200 * time.Millisecond,
			ResizeDebounce: 50 * time.Millisecond,
		},
	}
}

// Validate rejects configurations that cannot work at runtime.
func (c *Config) Validate() error {
	if c.Backend == nil {
		return fmt.Errorf("backend configuration is required")
	}
	if _, err := url.ParseRequestURI(c.Backend.BaseURL); err != nil {
		return fmt.Errorf("backend base URL is invalid: %w", err)
	}
	u, err := url.Parse(c.Backend.SocketURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("backend socket URL must be a ws:// or wss:// URL")
	}
	if c.Backend.RequestTimeout <= 0 {
		return fmt.Errorf("backend request timeout must be positive")
	}

	if c.Store == nil {
		return fmt.Errorf("store configuration is required")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store path cannot be empty")
	}
	if c.Store.Timeout <= 0 {
		return fmt.Errorf("store timeout must be positive")
	}

	if c.Workspace == nil {
		return fmt.Errorf("workspace configuration is required")
	}
	if c.Workspace.NavigateDelay < 0 {
		return fmt.Errorf("navigate delay cannot be negative")
	}
	if c.Workspace.WatchDebounce <= 0 {
		return fmt.Errorf("watch debounce must be positive")
	}
	if c.Workspace.ResizeDebounce <= 0 {
		return fmt.Errorf("resize debounce must be positive")
	}

	return nil
}

// LoadFromEnv overlays CODELAB_* environment variables on the defaults.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("CODELAB_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("CODELAB_SOCKET_URL"); v != "" {
		cfg.Backend.SocketURL = v
	}
	if v := os.Getenv("CODELAB_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.RequestTimeout = d
		}
	}
	if v := os.Getenv("CODELAB_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("CODELAB_STORE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Store.Timeout = d
		}
	}
	if v := os.Getenv("CODELAB_SCRATCH_DIR"); v != "" {
		cfg.Workspace.ScratchDir = v
	}
	if v := os.Getenv("CODELAB_NAVIGATE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Workspace.NavigateDelay = d
		}
	}
	if v := os.Getenv("CODELAB_WATCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Workspace.WatchDebounce = d
		}
	}

	return cfg
}

// configFile mirrors Config with string durations for JSON parsing.
type configFile struct {
	Backend *struct {
		BaseURL        string `json:"base_url"`
		SocketURL      string `json:"socket_url"`
		RequestTimeout string `json:"request_timeout"`
	} `json:"backend"`
	Store *struct {
		Path    string `json:"path"`
		Timeout string `json:"timeout"`
	} `json:"store"`
	Workspace *struct {
		ScratchDir     string `json:"scratch_dir"`
		NavigateDelay  string `json:"navigate_delay"`
		WatchDebounce  string `json:"watch_debounce"`
		ResizeDebounce string `json:"resize_debounce"`
	} `json:"workspace"`
}

// LoadFromFile overlays a JSON config file on the defaults and validates
// the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file configFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := DefaultConfig()

	if file.Backend != nil {
		if file.Backend.BaseURL != "" {
			cfg.Backend.BaseURL = file.Backend.BaseURL
		}
		if file.Backend.SocketURL != "" {
			cfg.Backend.SocketURL = file.Backend.SocketURL
		}
		setDuration(&cfg.Backend.RequestTimeout, file.Backend.RequestTimeout)
	}
	if file.Store != nil {
		if file.Store.Path != "" {
			cfg.Store.Path = file.Store.Path
		}
		setDuration(&cfg.Store.Timeout, file.Store.Timeout)
	}
	if file.Workspace != nil {
		if file.Workspace.ScratchDir != "" {
			cfg.Workspace.ScratchDir = file.Workspace.ScratchDir
		}
		setDuration(&cfg.Workspace.NavigateDelay, file.Workspace.NavigateDelay)
		setDuration(&cfg.Workspace.WatchDebounce, file.Workspace.WatchDebounce)
		setDuration(&cfg.Workspace.ResizeDebounce, file.Workspace.ResizeDebounce)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

func setDuration(dst *time.Duration, raw string) {
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*dst = d
	}
}

// Load applies precedence file > environment > defaults. File errors fall
// back silently so environment-only deployments keep working.
func Load(path string) *Config {
	cfg := LoadFromEnv()
	if path != "" {
		if fileCfg, err := LoadFromFile(path); err == nil {
			cfg = fileCfg
		}
	}
	return cfg
}
