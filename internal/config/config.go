// Package config reads runtime configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// minSecretLen matches the minimum the token service accepts.
const minSecretLen = 16

// Config holds runtime configuration for the server.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	Port            int           `envconfig:"PORT" default:"5001"`
	StaticDir       string        `envconfig:"STATIC_DIR" default:"public"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	DBDriver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBPath     string `envconfig:"DB_PATH" default:"data/registration.db"`
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`

	PasswordMode    string   `envconfig:"PASSWORD_MODE" default:"plain"`
	ListTokenSecret string   `envconfig:"LIST_TOKEN_SECRET"`
	CORSOrigins     []string `envconfig:"CORS_ORIGINS" default:"*"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH must be set for sqlite"))
		}
	case "mysql", "postgres":
		if c.DBHost == "" {
			errs = append(errs, fmt.Errorf("DB_HOST must be set for %s", c.DBDriver))
		}
		if c.DBName == "" {
			errs = append(errs, fmt.Errorf("DB_NAME must be set for %s", c.DBDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}

	switch c.PasswordMode {
	case "plain", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("unknown PASSWORD_MODE %q", c.PasswordMode))
	}

	if c.ListTokenSecret != "" && len(c.ListTokenSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("LIST_TOKEN_SECRET must be at least %d characters", minSecretLen))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}

	if _, err := c.level(); err != nil {
		errs = append(errs, err)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsProduction returns true when the server runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// ListingProtected reports whether GET /registrations needs a token.
func (c *Config) ListingProtected() bool {
	return c.ListTokenSecret != ""
}

func (c *Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}
	return lvl, nil
}

// NewLogger returns a slog.Logger writing to w in the configured format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := c.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
