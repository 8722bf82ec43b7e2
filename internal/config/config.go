// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is the campaign engine service configuration.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// StorageDriver selects the save-game backend: memory, redis or sqlite.
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	RedisURL      string `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"campaign.db"`

	// QuestDataDir optionally points at a directory of extra quest
	// definition JSON files merged into the built-in campaign.
	QuestDataDir string `env:"QUEST_DATA_DIR"`

	// TickHz is the quest timer tick rate.
	TickHz int `env:"TICK_HZ" envDefault:"10"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.StorageDriver {
	case "memory", "redis", "sqlite":
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if cfg.TickHz <= 0 {
		return nil, fmt.Errorf("tick rate must be positive, got %d", cfg.TickHz)
	}
	return cfg, nil
}

// SlogLevel maps the configured log level string to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
