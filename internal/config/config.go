// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/jonathan/news-recommender/internal/recommend"
)

// Defaults for the service settings.
const (
	DefaultPort                   = 8080
	DefaultLogLevel               = "info"
	DefaultLogFormat              = "json"
	DefaultRateLimit              = 120 // requests per minute per client
	DefaultCorpusLimit            = 200
	DefaultHistoryLimit           = 100
	DefaultPreferenceHistoryLimit = 50
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or come from env and CLI flags.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	LogLevel    string `json:"log_level,omitempty"`    // debug, info, warn, error
	LogFormat   string `json:"log_format,omitempty"`   // json or console
	RateLimit   *int   `json:"rate_limit,omitempty"`   // requests per minute per client IP; 0 disables

	Engine EngineConfig `json:"engine"`
}

// EngineConfig is the scoring tuning plus how much data is loaded per request.
type EngineConfig struct {
	recommend.Config

	CorpusLimit            int `json:"corpus_limit,omitempty"`            // articles loaded as candidates
	HistoryLimit           int `json:"history_limit,omitempty"`           // interactions loaded per recommendation
	PreferenceHistoryLimit int `json:"preference_history_limit,omitempty"` // interactions used to refresh stored preferences
}

// Default returns a configuration with every default filled in.
func Default() Config {
	return Config{
		Port:      DefaultPort,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		RateLimit: intPtr(DefaultRateLimit),
		Engine: EngineConfig{
			Config:                 recommend.DefaultConfig(),
			CorpusLimit:            DefaultCorpusLimit,
			HistoryLimit:           DefaultHistoryLimit,
			PreferenceHistoryLimit: DefaultPreferenceHistoryLimit,
		},
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from DATABASE_URL, PORT, LOG_LEVEL and LOG_FORMAT.
// getenv is usually os.Getenv; empty values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: PORT must be a number: %w", err)
		}
		c.Port = port
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be within 0-65535")
	}
	if c.RateLimit != nil && *c.RateLimit < 0 {
		return fmt.Errorf("config error: 'rate_limit' must be non-negative")
	}
	switch c.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("config error: 'log_format' must be json or console, got %q", c.LogFormat)
	}

	if c.Engine.CorpusLimit < 0 {
		return fmt.Errorf("config error: 'corpus_limit' must be non-negative")
	}
	if c.Engine.HistoryLimit < 0 {
		return fmt.Errorf("config error: 'history_limit' must be non-negative")
	}
	if c.Engine.PreferenceHistoryLimit < 0 {
		return fmt.Errorf("config error: 'preference_history_limit' must be non-negative")
	}
	if err := c.Engine.Config.Validate(); err != nil {
		return fmt.Errorf("config error: engine: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimit == nil {
		result.RateLimit = defaults.RateLimit
	}
	if result.Engine.CorpusLimit == 0 {
		result.Engine.CorpusLimit = defaults.Engine.CorpusLimit
	}
	if result.Engine.HistoryLimit == 0 {
		result.Engine.HistoryLimit = defaults.Engine.HistoryLimit
	}
	if result.Engine.PreferenceHistoryLimit == 0 {
		result.Engine.PreferenceHistoryLimit = defaults.Engine.PreferenceHistoryLimit
	}

	// Engine tuning fills its own zero values; bools cannot be told apart from
	// unset, so strip_markup is taken as written
	result.Engine.Config.MergeWithDefaults()

	return result
}

// RateLimitPerMinute is the default per-client limit; 0 means rate limiting is off.
func (c *Config) RateLimitPerMinute() int {
	if c.RateLimit == nil {
		return DefaultRateLimit
	}
	return *c.RateLimit
}

func intPtr(v int) *int {
	return &v
}

// Load resolves the effective configuration: the file at path (if any), then
// environment overrides, then defaults, then validation.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	merged := cfg.MergeWithDefaults(Default())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}
