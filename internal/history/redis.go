package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/judgepanel/internal/domain"
	"github.com/davidbz/judgepanel/internal/observability"
)

// RedisStore keeps evaluations as JSON documents in a Redis list.
type RedisStore struct {
	client     *redis.Client
	key        string
	maxEntries int
}

// NewRedisStore creates a Redis-backed store writing to the given list key.
func NewRedisStore(client *redis.Client, key string, maxEntries int) *RedisStore {
	return &RedisStore{
		client:     client,
		key:        key,
		maxEntries: maxEntries,
	}
}

// Append pushes the evaluation and trims the list to the newest maxEntries.
func (s *RedisStore) Append(ctx context.Context, evaluation domain.Evaluation) error {
	data, err := json.Marshal(evaluation)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, data)
	if s.maxEntries > 0 {
		pipe.LTrim(ctx, s.key, int64(-s.maxEntries), -1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store evaluation: %w", err)
	}

	observability.FromContext(ctx).Debug("evaluation stored",
		observability.String("key", s.key),
		observability.String("evaluation_id", evaluation.ID))

	return nil
}

// List returns all stored evaluations, oldest first. Entries that cannot be
// decoded are skipped.
func (s *RedisStore) List(ctx context.Context) ([]domain.Evaluation, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read evaluations: %w", err)
	}

	logger := observability.FromContext(ctx)
	out := make([]domain.Evaluation, 0, len(raw))
	for _, item := range raw {
		var evaluation domain.Evaluation
		if err := json.Unmarshal([]byte(item), &evaluation); err != nil {
			logger.Warn("skipping undecodable evaluation", observability.Error(err))
			continue
		}
		out = append(out, evaluation)
	}

	return out, nil
}

// Ping checks connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
