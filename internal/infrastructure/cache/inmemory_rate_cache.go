package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// cacheEntry wraps a cached value with expiration time
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryRateCache implements catalog.RateCache inside the process.
// It is used when Redis is disabled; entries are not shared across instances.
type InMemoryRateCache struct {
	entries sync.Map // key -> *cacheEntry[catalog.Rate]
	gens    sync.Map // product ID -> *atomic.Uint64
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// NewInMemoryRateCache creates the cache and starts its cleanup loop
func NewInMemoryRateCache(ttl time.Duration, logger *zap.Logger) *InMemoryRateCache {
	if ttl <= 0 {
		ttl = DefaultRateTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &InMemoryRateCache{
		ttl:    ttl,
		logger: logger,
		stopCh: make(chan struct{}),
	}
	go c.cleanupExpired()
	return c
}

// Get retrieves a resolved rate from cache
func (c *InMemoryRateCache) Get(_ context.Context, productID uuid.UUID, unit string, day time.Time) (*catalog.Rate, uint64, error) {
	gen := c.generation(productID).Load()
	key := rateKey(productID, gen, unit, day)

	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry[catalog.Rate])
		if !entry.isExpired(time.Now()) {
			atomic.AddInt64(&c.hits, 1)
			rate := entry.value
			return &rate, gen, nil
		}
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, gen, nil
}

// Set stores a copy of the rate. Writes for a generation that has already
// been invalidated are dropped.
func (c *InMemoryRateCache) Set(_ context.Context, productID uuid.UUID, unit string, day time.Time, generation uint64, rate *catalog.Rate, ttl time.Duration) error {
	if rate == nil || generation != c.generation(productID).Load() {
		return nil
	}
	if ttl == 0 {
		ttl = c.ttl
	}
	c.entries.Store(rateKey(productID, generation, unit, day), &cacheEntry[catalog.Rate]{
		value:     *rate,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// InvalidateProduct advances the product's generation and removes its entries
func (c *InMemoryRateCache) InvalidateProduct(_ context.Context, productID uuid.UUID) error {
	c.generation(productID).Add(1)

	prefix := rateKeyPrefix + productID.String() + ":"
	c.entries.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			c.entries.Delete(key)
		}
		return true
	})
	return nil
}

func (c *InMemoryRateCache) generation(productID uuid.UUID) *atomic.Uint64 {
	if gen, ok := c.gens.Load(productID); ok {
		return gen.(*atomic.Uint64)
	}
	gen, _ := c.gens.LoadOrStore(productID, new(atomic.Uint64))
	return gen.(*atomic.Uint64)
}

// Close stops the cleanup loop. Safe to call more than once.
func (c *InMemoryRateCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryRateCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries, expired ones included
func (c *InMemoryRateCache) Count() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemoryRateCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup(time.Now())
		}
	}
}

func (c *InMemoryRateCache) doCleanup(now time.Time) {
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry[catalog.Rate]).isExpired(now) {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Cleaned up expired rate cache entries", zap.Int("removed", removed))
	}
}

var _ catalog.RateCache = (*InMemoryRateCache)(nil)
