// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the complete runtime configuration.
type Config struct {
	Port      string `env:"PORT"       envDefault:"3000"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	API     APIConfig
	Breaker BreakerConfig

	SessionFile string        `env:"SESSION_FILE" envDefault:".session.yaml"`
	StoreTTL    time.Duration `env:"STORE_TTL"    envDefault:"30s"`

	// Actions (posting, reacting, following) allowed per client IP per minute.
	ActionsPerMinute int `env:"ACTIONS_PER_MINUTE" envDefault:"60"`
}

// APIConfig controls the REST API client.
type APIConfig struct {
	BaseURL     string        `env:"API_BASE_URL"     envDefault:"http://localhost:8000"`
	Timeout     time.Duration `env:"API_TIMEOUT"      envDefault:"10s"`
	RPS         float64       `env:"API_RPS"          envDefault:"20"`
	Burst       int           `env:"API_BURST"        envDefault:"40"`
	MaxAttempts int           `env:"API_MAX_ATTEMPTS" envDefault:"3"`
	BaseBackoff time.Duration `env:"API_BASE_BACKOFF" envDefault:"200ms"`
}

// BreakerConfig controls the circuit breaker around API calls.
type BreakerConfig struct {
	MaxRequests      uint32        `env:"BREAKER_MAX_REQUESTS"      envDefault:"3"`
	Interval         time.Duration `env:"BREAKER_INTERVAL"          envDefault:"30s"`
	Timeout          time.Duration `env:"BREAKER_TIMEOUT"           envDefault:"15s"`
	MinRequests      uint32        `env:"BREAKER_MIN_REQUESTS"      envDefault:"10"`
	FailureThreshold float64       `env:"BREAKER_FAILURE_THRESHOLD" envDefault:"0.6"`
}

// Load reads envFiles (missing files are skipped) and then the environment.
// Variables already set in the environment win over file values.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the process cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not an absolute URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}
	if c.API.RPS <= 0 || c.API.Burst < 1 {
		return errors.New("API_RPS and API_BURST must be positive")
	}
	if c.API.MaxAttempts < 1 {
		return errors.New("API_MAX_ATTEMPTS must be at least 1")
	}
	if c.StoreTTL <= 0 {
		return errors.New("STORE_TTL must be positive")
	}
	if c.Breaker.FailureThreshold <= 0 || c.Breaker.FailureThreshold > 1 {
		return errors.New("BREAKER_FAILURE_THRESHOLD must be in (0, 1]")
	}
	return nil
}
