package cache

import (
	"context"
	"time"

	"github.com/ledger/backend/internal/domain/catalog"
	"github.com/ledger/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the cache-backed components the API needs
type Stores struct {
	Client      *redis.Client // nil when running without Redis
	Rates       catalog.RateCache
	Idempotency IdempotencyStore
	closers     []func() error
}

// Close releases background goroutines and the Redis client
func (s *Stores) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Factory creates cache stores based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	rateTTL               time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithRateCacheTTL overrides DefaultRateTTL
func WithRateCacheTTL(ttl time.Duration) FactoryOption {
	return func(f *Factory) {
		f.rateTTL = ttl
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		rateTTL:               DefaultRateTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Build connects to Redis when enabled and falls back to in-memory stores
// otherwise. A disabled Redis is not an error.
func (f *Factory) Build(ctx context.Context) (*Stores, error) {
	if f.redisConfig.Enabled {
		client, err := NewRedisClient(ctx, f.redisConfig)
		if err == nil {
			f.logger.Info("Using Redis cache stores", zap.String("addr", f.redisConfig.Addr()))
			return &Stores{
				Client:      client,
				Rates:       NewRedisRateCache(client, WithRateTTL(f.rateTTL), WithCacheLogger(f.logger)),
				Idempotency: NewRedisIdempotencyStore(client),
				closers:     []func() error{client.Close},
			}, nil
		}
		if !f.allowInMemoryFallback {
			return nil, err
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory cache stores. "+
			"Idempotency keys and cached rates will not be shared between instances.",
			zap.Error(err))
	}
	return f.inMemory(), nil
}

func (f *Factory) inMemory() *Stores {
	rates := NewInMemoryRateCache(f.rateTTL, f.logger)
	idem := NewInMemoryIdempotencyStore()
	return &Stores{
		Rates:       rates,
		Idempotency: idem,
		closers:     []func() error{rates.Close, idem.Close},
	}
}
