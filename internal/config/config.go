package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"` // optional; disables vote rate limiting when empty
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	// VoteRetryAttempts bounds retries of a vote transaction that lost a
	// serialization race before the failure surfaces as a conflict.
	VoteRetryAttempts int           `env:"VOTE_RETRY_ATTEMPTS" default:"3"`
	VoteRetryBackoff  time.Duration `env:"VOTE_RETRY_BACKOFF" default:"10ms"`
	// VoteLockTimeout bounds how long a vote transaction waits for the
	// post row lock before rolling back.
	VoteLockTimeout time.Duration `env:"VOTE_LOCK_TIMEOUT" default:"2s"`

	VoteRateLimitCapacity int `env:"VOTE_RATE_LIMIT_CAPACITY" default:"30"`
	VoteRateLimitPerMin   int `env:"VOTE_RATE_LIMIT_PER_MINUTE" default:"60"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.VoteRetryAttempts < 1 {
		return fmt.Errorf("VOTE_RETRY_ATTEMPTS must be at least 1, got %d", cfg.VoteRetryAttempts)
	}
	if cfg.VoteLockTimeout <= 0 {
		return fmt.Errorf("VOTE_LOCK_TIMEOUT must be positive, got %s", cfg.VoteLockTimeout)
	}
	if cfg.VoteRateLimitCapacity < 1 || cfg.VoteRateLimitPerMin < 1 {
		return fmt.Errorf("vote rate limit capacity and rate must be at least 1")
	}
	return nil
}
