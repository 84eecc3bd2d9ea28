// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all settings for the review TUI and MCP server.
type Config struct {
	// Backend
	BackendURL          string        `envconfig:"BACKEND_URL" default:"http://localhost:5501"`
	RequestTimeout      time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	RetryMaxAttempts    int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialBackoff time.Duration `envconfig:"RETRY_INITIAL_BACKOFF" default:"200ms"`

	// Polling and playback
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	PlaybackTick time.Duration `envconfig:"PLAYBACK_TICK" default:"250ms"`
	SeekStep     time.Duration `envconfig:"SEEK_STEP" default:"5s"`
	Player       string        `envconfig:"PLAYER" default:"ffplay"` // ffplay, mpv, or "none"

	// Local state
	CachePath string `envconfig:"CACHE_PATH"`
	LogFile   string `envconfig:"LOG_FILE"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// Prometheus listen address; empty disables metrics.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`
}

// Load reads a .env file if one exists, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv reads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.CachePath == "" {
		cfg.CachePath = filepath.Join(stateDir(), "cache.sqlite")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(stateDir(), "review.log")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL %q is not an absolute URL", c.BackendURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.PlaybackTick <= 0 {
		return fmt.Errorf("PLAYBACK_TICK must be positive")
	}
	if c.SeekStep <= 0 {
		return fmt.Errorf("SEEK_STEP must be positive")
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// stateDir is where the cache and log live by default.
func stateDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "transcript-review")
}
