// Package config loads server configuration from the environment.
//
// A .env file in the working directory is loaded first if present (local
// development convenience); real environments set variables directly.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           int           `env:"PORT" envDefault:"8080"`
	DataPath       string        `env:"DATA_PATH" envDefault:"data/linkup.json"`
	JWTSecret      string        `env:"JWT_SECRET"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	// HashSecrets switches credential storage from the product default
	// (plaintext compare) to bcrypt. Existing plaintext records keep working
	// only in the mode they were written under.
	HashSecrets bool   `env:"AUTH_HASH_SECRETS" envDefault:"false"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Environment string `env:"ENV" envDefault:"development"`
}

// Load reads .env (if any) and parses the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET is required")
	}
	return cfg, nil
}

// SlogLevel maps the LOG_LEVEL string onto a slog level, defaulting to Info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
