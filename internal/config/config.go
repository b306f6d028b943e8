// Package config loads server configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full server configuration.
type Config struct {
	Port        string
	Environment string

	// OpenRouterKey is the provider bearer credential. See CredentialMissing.
	OpenRouterKey string
	// SiteURL is sent as the HTTP-Referer on provider calls.
	SiteURL string

	// RedisURL, when set, backs the rate-limit store with shared Redis so
	// limits stay consistent across workers.
	RedisURL string

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Scaffolding keys that ship in .env.example files. Treated the same as an
// unset credential.
var placeholderKeys = map[string]struct{}{
	"your-openrouter-api-key-here": {},
	"sk-or-v1-your-api-key-here":   {},
	"your-api-key-here":            {},
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Port:              envOr("PORT", "8080"),
		Environment:       envOr("ENVIRONMENT", "development"),
		OpenRouterKey:     os.Getenv("OPENROUTER_API_KEY"),
		SiteURL:           envOr("SITE_URL", "http://localhost:8080"),
		RedisURL:          os.Getenv("REDIS_URL"),
		RateLimitRequests: envIntOr("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindow:   envDurationOr("RATE_LIMIT_WINDOW", time.Minute),
	}
}

// CredentialMissing reports whether the provider key is absent or a known
// placeholder. Turns must short-circuit with a configuration error instead
// of calling out with a bad credential.
func (c *Config) CredentialMissing() bool {
	if c.OpenRouterKey == "" {
		return true
	}
	_, placeholder := placeholderKeys[c.OpenRouterKey]
	return placeholder
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
