package history

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/judgepanel/internal/config"
	"github.com/davidbz/judgepanel/internal/domain"
	"github.com/davidbz/judgepanel/internal/observability"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	pingTimeout = 5 * time.Second
)

// New builds the history store selected by configuration.
func New(cfg *config.HistoryConfig) (domain.HistoryStore, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(cfg.MaxEntries), nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		store := NewRedisStore(client, cfg.RedisKey, cfg.MaxEntries)

		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}

		observability.FromContext(ctx).Info("using redis history store",
			observability.String("addr", cfg.RedisAddr),
			observability.String("key", cfg.RedisKey))

		return store, nil
	default:
		return nil, fmt.Errorf("unknown history backend: %s", cfg.Backend)
	}
}
