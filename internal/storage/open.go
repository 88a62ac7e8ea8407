package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

// Open returns the storage backend selected by cfg.StorageBackend. Redis is
// waited on until reachable or ctx ends.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMockStorage(), nil
	case config.BackendSQLite:
		s, err := NewSQLiteStorage(cfg.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return s, nil
	case config.BackendRedis:
		r, err := NewRedisStorage(cfg.RedisURL, cfg.PopulationTTL, log)
		if err != nil {
			return nil, err
		}
		if err := r.WaitForConnection(ctx, 30, 2*time.Second); err != nil {
			r.Close()
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
