package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Env         string `envconfig:"ENV" default:"development"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// RedisAddr enables the cross-instance change feed when set.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	JWTSecret        string        `envconfig:"JWT_SECRET" required:"true"`
	JWTAccessExpiry  time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"15m"`
	JWTRefreshExpiry time.Duration `envconfig:"JWT_REFRESH_EXPIRY" default:"168h"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`

	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"300"`
	AllowedOrigins     []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be provided")
	}
	if cfg.JWTAccessExpiry <= 0 || cfg.JWTRefreshExpiry <= 0 {
		return nil, errors.New("token expiries must be positive")
	}
	if cfg.RateLimitPerMinute <= 0 {
		return nil, errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
