package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/catalog"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultRateTTL bounds how long a resolved rate is served from cache
	DefaultRateTTL = 10 * time.Minute

	rateKeyPrefix        = "ledger:rate:"
	rateGenKeyPrefix     = "ledger:rate-gen:"
	defaultScanBatchSize = 100
)

func rateKey(productID uuid.UUID, generation uint64, unit string, day time.Time) string {
	return fmt.Sprintf("%s%s:g%d:%s:%s", rateKeyPrefix, productID, generation,
		catalog.NormalizeUnit(unit), shared.FormatDate(shared.TruncateDay(day)))
}

func generationKey(productID uuid.UUID) string {
	return rateGenKeyPrefix + productID.String()
}

func productKeyPattern(productID uuid.UUID) string {
	return rateKeyPrefix + productID.String() + ":*"
}

// RedisRateCache implements catalog.RateCache on Redis
type RedisRateCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// RedisRateCacheOption is a functional option for configuring the cache
type RedisRateCacheOption func(*RedisRateCache)

// WithRateTTL sets the default entry lifetime
func WithRateTTL(ttl time.Duration) RedisRateCacheOption {
	return func(c *RedisRateCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisRateCacheOption {
	return func(c *RedisRateCache) {
		c.logger = logger
	}
}

// NewRedisRateCache creates a rate cache on an existing Redis client.
// The caller keeps ownership of the client.
func NewRedisRateCache(client redis.UniversalClient, opts ...RedisRateCacheOption) *RedisRateCache {
	c := &RedisRateCache{
		client: client,
		ttl:    DefaultRateTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a resolved rate from cache
func (c *RedisRateCache) Get(ctx context.Context, productID uuid.UUID, unit string, day time.Time) (*catalog.Rate, uint64, error) {
	gen, err := c.generation(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	key := rateKey(productID, gen, unit, day)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Cache miss for rate", zap.String("key", key))
		return nil, gen, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get rate from cache: %w", err)
	}

	var rate catalog.Rate
	if err := json.Unmarshal(data, &rate); err != nil {
		c.logger.Warn("Dropping corrupted rate cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, key)
		return nil, gen, nil
	}
	return &rate, gen, nil
}

// Set stores a resolved rate under the generation returned by Get
func (c *RedisRateCache) Set(ctx context.Context, productID uuid.UUID, unit string, day time.Time, generation uint64, rate *catalog.Rate, ttl time.Duration) error {
	if rate == nil {
		return nil
	}
	if ttl == 0 {
		ttl = c.ttl
	}

	data, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("failed to marshal rate: %w", err)
	}
	if err := c.client.Set(ctx, rateKey(productID, generation, unit, day), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set rate in cache: %w", err)
	}
	return nil
}

func (c *RedisRateCache) generation(ctx context.Context, productID uuid.UUID) (uint64, error) {
	gen, err := c.client.Get(ctx, generationKey(productID)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read rate cache generation: %w", err)
	}
	return gen, nil
}

// InvalidateProduct bumps the product's generation, then removes the
// entries stored under older generations.
// SCAN is used instead of KEYS so Redis is never blocked.
func (c *RedisRateCache) InvalidateProduct(ctx context.Context, productID uuid.UUID) error {
	gen, err := c.client.Incr(ctx, generationKey(productID)).Result()
	if err != nil {
		return fmt.Errorf("failed to advance rate cache generation: %w", err)
	}

	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, productKeyPattern(productID), defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan rate cache keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete rate cache keys: %w", err)
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.logger.Debug("Invalidated rate cache",
		zap.String("product_id", productID.String()),
		zap.Int64("generation", gen),
		zap.Int64("deleted_count", deleted))
	return nil
}

var _ catalog.RateCache = (*RedisRateCache)(nil)
