package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/npc-engine/pkg/npc"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

const (
	populationKeyPrefix = "population:"
	populationIndexKey  = "populations"
)

// RedisStorage keeps populations in Redis as JSON values with a TTL, plus a
// set indexing the stored ids.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. redisURL may be a
// redis:// URL or a bare host:port. A zero ttl keeps populations forever.
func NewRedisStorage(redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opt := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opt = parsed
	}

	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Population operations

func populationKey(id uuid.UUID) string {
	return populationKeyPrefix + id.String()
}

func (r *RedisStorage) SavePopulation(ctx context.Context, pop *npc.Population) error {
	if pop == nil {
		return errors.New("population cannot be nil")
	}

	data, err := json.Marshal(pop)
	if err != nil {
		r.logger.Error("Failed to marshal population", "uuid", pop.ID, "error", err)
		return fmt.Errorf("failed to marshal population: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, populationKey(pop.ID), data, r.ttl)
		pipe.SAdd(ctx, populationIndexKey, pop.ID.String())
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save population", "uuid", pop.ID, "error", err)
		return fmt.Errorf("failed to save population: %w", err)
	}

	r.logger.Debug("Saved population", "uuid", pop.ID, "count", pop.Count)
	return nil
}

func (r *RedisStorage) LoadPopulation(ctx context.Context, id uuid.UUID) (*npc.Population, error) {
	data, err := r.client.Get(ctx, populationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Population not found", "uuid", id)
			return nil, storage.ErrPopulationNotFound
		}
		r.logger.Error("Failed to load population", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load population: %w", err)
	}

	var pop npc.Population
	if err := json.Unmarshal(data, &pop); err != nil {
		r.logger.Error("Failed to unmarshal population", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal population: %w", err)
	}
	if err := migrateRecords(pop.NPCs); err != nil {
		return nil, err
	}
	return &pop, nil
}

func (r *RedisStorage) DeletePopulation(ctx context.Context, id uuid.UUID) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, populationKey(id))
		pipe.SRem(ctx, populationIndexKey, id.String())
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to delete population", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete population: %w", err)
	}
	return nil
}

// ListPopulations returns indexed ids whose values still exist. Ids whose
// values expired are dropped from the index.
func (r *RedisStorage) ListPopulations(ctx context.Context) ([]uuid.UUID, error) {
	members, err := r.client.SMembers(ctx, populationIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list populations: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			r.logger.Warn("Skipping malformed population id", "member", m)
			continue
		}

		n, err := r.client.Exists(ctx, populationKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check population %s: %w", id, err)
		}
		if n == 0 {
			if err := r.client.SRem(ctx, populationIndexKey, m).Err(); err != nil {
				r.logger.Warn("Failed to prune expired population", "uuid", id, "error", err)
			}
			continue
		}
		ids = append(ids, id)
	}

	storage.SortIDs(ids)
	return ids, nil
}

// migrateRecords brings loaded records up to the current schema in place.
func migrateRecords(recs []*npc.Record) error {
	for i, rec := range recs {
		migrated, err := npc.Migrate(rec)
		if err != nil {
			return fmt.Errorf("failed to migrate record: %w", err)
		}
		recs[i] = migrated
	}
	return nil
}
