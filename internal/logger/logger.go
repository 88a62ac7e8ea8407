package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/npc-engine/internal/config"
)

// Setup configures the global slog logger based on environment
func Setup(cfg *config.Config) *slog.Logger {
	return New(os.Stdout, cfg)
}

// New builds the logger for cfg writing to w and sets it as the default.
func New(w io.Writer, cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if cfg.Environment == "production" {
		// JSON format for production
		handler = slog.NewJSONHandler(w, opts)
	} else {
		// Text format for development
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithRequestID adds request ID to logger context
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With("request_id", requestID)
}

// WithPopulation adds the population id and seed to logger context
func WithPopulation(logger *slog.Logger, id, seed string) *slog.Logger {
	return logger.With("population_id", id, "seed", seed)
}
