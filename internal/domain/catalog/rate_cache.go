package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RateCache holds resolved rate lookups keyed by product, unit and day.
//
// Each product carries a generation that is part of every key, following
// rate:{product_id}:g{generation}:{unit}:{yyyy-mm-dd}. InvalidateProduct
// advances the generation, so a lookup that read the database before a rate
// write can only store its result under a key nobody reads any more.
type RateCache interface {
	// Get returns the cached rate, or nil on a miss, together with the
	// product's current generation. Pass the generation back to Set.
	Get(ctx context.Context, productID uuid.UUID, unit string, day time.Time) (*Rate, uint64, error)

	// Set stores the rate resolved for the lookup under the given generation.
	// A zero ttl uses the implementation default.
	Set(ctx context.Context, productID uuid.UUID, unit string, day time.Time, generation uint64, rate *Rate, ttl time.Duration) error

	// InvalidateProduct advances the product's generation and drops its
	// cached lookups.
	InvalidateProduct(ctx context.Context, productID uuid.UUID) error
}
