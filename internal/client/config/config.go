package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/validation"
)

// Config holds runtime settings of the reader client.
type Config struct {
	ServerBaseURL string `validate:"required,url"`
	APIPrefix     string `validate:"required,startswith=/"`
	ListenAddr    string `validate:"required"`
	DatabasePath  string `validate:"required"`

	OnlineCheckInterval  time.Duration `validate:"gt=0"`
	ProgressPollInterval time.Duration `validate:"gt=0"`
	PositionSaveInterval time.Duration `validate:"gt=0"`
	RequestTimeout       time.Duration `validate:"gt=0"`

	// AnchorOffset is the distance below the viewport top, in the rendering
	// layer's units, at which reading position is sampled.
	AnchorOffset float64 `validate:"gte=0"`

	CachePrefix  string `validate:"required"`
	CacheVersion string `validate:"required"`
	// ManifestPath points to a YAML shell manifest. Empty selects the
	// built-in one.
	ManifestPath string

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	ViewCacheSize int `validate:"gte=1"`

	// Headless serves the gateway without the interactive REPL.
	Headless bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000"
	c.APIPrefix = "/api"
	c.ListenAddr = "127.0.0.1:8080"
	c.DatabasePath = "reader.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.ProgressPollInterval = 2 * time.Second
	c.PositionSaveInterval = 2 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.AnchorOffset = 60
	c.CachePrefix = "readkeeper"
	c.CacheVersion = "v1"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.ViewCacheSize = 256
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// LoadConfig applies defaults, then dotenv/environment, JSON and flags, and
// validates the result. Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}
	if err := parseJson(cfg); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
