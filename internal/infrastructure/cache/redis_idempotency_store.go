package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "ledger:idempotency:"

// RedisIdempotencyStore implements IdempotencyStore using Redis.
// This is suitable for deployments where several API instances must agree
// on which requests were already handled.
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisIdempotencyStore creates a store with an existing Redis client
func NewRedisIdempotencyStore(client redis.UniversalClient) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: idempotencyKeyPrefix,
	}
}

// Claim uses SETNX so only one request can own a key
func (s *RedisIdempotencyStore) Claim(ctx context.Context, key, requestHash string, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(IdempotencyRecord{Pending: true, RequestHash: requestHash})
	if err != nil {
		return false, fmt.Errorf("failed to marshal idempotency record: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, payload, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return ok, nil
}

// Get loads the record stored for key
func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*IdempotencyRecord, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}

	var record IdempotencyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode idempotency record: %w", err)
	}
	return &record, nil
}

// Complete stores the final response
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, record IdempotencyRecord, ttl time.Duration) error {
	record.Pending = false
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}
	return nil
}

// Release deletes the key
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

var _ IdempotencyStore = (*RedisIdempotencyStore)(nil)
