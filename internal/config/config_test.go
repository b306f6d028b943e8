package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("RATE_LIMIT_REQUESTS", "")
	t.Setenv("RATE_LIMIT_WINDOW", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 20, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-v1-real-key")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5, cfg.RateLimitRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.False(t, cfg.CredentialMissing())
}

func TestCredentialMissing(t *testing.T) {
	cases := []struct {
		key     string
		missing bool
	}{
		{"", true},
		{"your-openrouter-api-key-here", true},
		{"sk-or-v1-your-api-key-here", true},
		{"your-api-key-here", true},
		{"sk-or-v1-abc123", false},
	}
	for _, tc := range cases {
		cfg := &Config{OpenRouterKey: tc.key}
		assert.Equal(t, tc.missing, cfg.CredentialMissing(), "key %q", tc.key)
	}
}

func TestInvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "not-a-number")
	t.Setenv("RATE_LIMIT_WINDOW", "-5s")

	cfg := Load()
	assert.Equal(t, 20, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
}
