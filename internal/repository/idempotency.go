package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/checkout"
)

const idempotencyKeyPrefix = "idem:checkout:"

// RedisIdempotencyStore remembers the outcome a buyer's idempotency key
// already committed, so a replayed checkout never creates a second order and
// never reports more progress than the first attempt made.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl, logger: logger}
}

// Get returns the outcome recorded under key, or nil when the key is unknown.
func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*checkout.IdempotencyRecord, error) {
	val, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}

	var record checkout.IdempotencyRecord
	if err := json.Unmarshal(val, &record); err != nil {
		// A corrupt value is treated as a miss rather than blocking checkout.
		s.logger.Warn("Discarding malformed idempotency record",
			zap.String("key", key),
			zap.ByteString("value", val),
		)
		return nil, nil
	}
	return &record, nil
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, record *checkout.IdempotencyRecord) error {
	val, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, idempotencyKeyPrefix+key, val, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to record idempotency outcome: %w", err)
	}
	return nil
}
