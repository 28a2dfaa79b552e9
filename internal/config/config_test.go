package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 168*time.Hour, cfg.JWTRefreshExpiry)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 300, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_ACCESS_EXPIRY", "5m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 5*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_REFRESH_EXPIRY", "a week")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_NonPositiveRateLimit(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	_, err := Load()

	assert.Error(t, err)
}
