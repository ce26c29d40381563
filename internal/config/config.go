// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server and spotctl.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// LogLevel controls the minimum log level: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins,
	// comma-separated in the environment.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// RedisURL, when set, moves rate limit counters into Redis so that
	// replicas share them. Empty keeps them in process memory.
	RedisURL string `env:"REDIS_URL"`

	// SuggestRateLimit is the number of suggestions one client IP may submit
	// per SuggestRateWindow.
	SuggestRateLimit  int           `env:"SUGGEST_RATE_LIMIT" envDefault:"5"`
	SuggestRateWindow time.Duration `env:"SUGGEST_RATE_WINDOW" envDefault:"10m"`

	// MaxBodyBytes caps request bodies on write endpoints.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"65536"`

	// IntakeMaxTotal caps the combined characters of one suggestion.
	IntakeMaxTotal int `env:"INTAKE_MAX_TOTAL" envDefault:"5000"`

	// AutoMigrate applies pending migrations when the API server starts.
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"false"`
}

// Load reads a .env file if one exists, then parses the environment into a
// Config. Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Logger returns a JSON slog.Logger writing to w at the configured level.
// An unrecognized LOG_LEVEL falls back to info.
func (c Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func (c Config) validate() error {
	var errs []error
	if c.SuggestRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("SUGGEST_RATE_LIMIT must be > 0 (got %d)", c.SuggestRateLimit))
	}
	if c.SuggestRateWindow <= 0 {
		errs = append(errs, fmt.Errorf("SUGGEST_RATE_WINDOW must be > 0 (got %s)", c.SuggestRateWindow))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES must be > 0 (got %d)", c.MaxBodyBytes))
	}
	if c.IntakeMaxTotal <= 0 {
		errs = append(errs, fmt.Errorf("INTAKE_MAX_TOTAL must be > 0 (got %d)", c.IntakeMaxTotal))
	}
	return errors.Join(errs...)
}

// trimAll trims each entry and drops empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
