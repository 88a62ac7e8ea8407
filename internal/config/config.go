package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	Environment  string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName string `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel     slog.Level

	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"memory"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"npcs.db"`
	PopulationTTL  time.Duration `env:"POPULATION_TTL" envDefault:"24h"`

	// DataDir overrides the embedded content tables when set.
	DataDir        string `env:"DATA_DIR"`
	Seed           string `env:"NPC_SEED" envDefault:"cod-default"`
	PopulationSize int    `env:"POPULATION_SIZE" envDefault:"20"`
	MaxPopulation  int    `env:"MAX_POPULATION" envDefault:"500"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.PopulationSize < 0 {
		return fmt.Errorf("POPULATION_SIZE must be non-negative, got %d", c.PopulationSize)
	}
	if c.MaxPopulation < c.PopulationSize {
		return fmt.Errorf("MAX_POPULATION %d is below POPULATION_SIZE %d", c.MaxPopulation, c.PopulationSize)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
