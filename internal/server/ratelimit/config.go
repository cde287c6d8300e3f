package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit applied to one route.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (a trailing "/" matches by prefix)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns the standard limits with the given default per-minute limit.
func DefaultConfig(defaultLimit int) *Config {
	return &Config{
		Enabled:         defaultLimit > 0,
		DefaultLimit:    defaultLimit,
		DefaultWindow:   time.Minute,
		Whitelist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// LoadConfig applies RATE_LIMIT_ENABLED, RATE_LIMIT_DEFAULT_LIMIT,
// RATE_LIMIT_DEFAULT_WINDOW and RATE_LIMIT_WHITELIST on top of DefaultConfig.
func LoadConfig(defaultLimit int, getenv func(string) string) *Config {
	cfg := DefaultConfig(defaultLimit)

	if v, err := strconv.ParseBool(getenv("RATE_LIMIT_ENABLED")); err == nil {
		cfg.Enabled = v
	}
	if v, err := strconv.Atoi(getenv("RATE_LIMIT_DEFAULT_LIMIT")); err == nil && v > 0 {
		cfg.DefaultLimit = v
	}
	if v, err := time.ParseDuration(getenv("RATE_LIMIT_DEFAULT_WINDOW")); err == nil && v > 0 {
		cfg.DefaultWindow = v
	}
	cfg.Whitelist = parseIPList(getenv("RATE_LIMIT_WHITELIST"))

	// without a positive default there is nothing to enforce on unmatched routes
	if cfg.DefaultLimit <= 0 {
		cfg.Enabled = false
	}
	return cfg
}

// DefaultEndpointConfigs returns the endpoint-specific limits.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Writes: each one rebuilds stored preferences
		{Path: "/api/interact", Method: "POST", Limit: 60, Window: time.Minute},

		// Scoring reads load the corpus and history
		{Path: "/api/recommend/", Method: "GET", Limit: 120, Window: time.Minute},
		{Path: "/api/articles/", Method: "GET", Limit: 120, Window: time.Minute},

		// Other reads fall back to the default limit; /health and /metrics are unlimited
	}
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
