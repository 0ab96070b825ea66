package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	shared.VersionedRepository[Product]

	// FindByCode finds a product by its code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// ExistsByCode checks whether another product already uses the code
	ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)
}

// RateRepository defines the interface for rate persistence
type RateRepository interface {
	shared.VersionedRepository[Rate]

	// FindEffective returns the active rate covering day for the product and
	// unit; the latest effective_from wins. Returns shared.ErrNotFound if none.
	FindEffective(ctx context.Context, productID uuid.UUID, unit string, day time.Time) (*Rate, error)

	// FindOverlapping returns active rates for the product and unit whose
	// window intersects [from, to]. excludeID skips the rate being edited.
	FindOverlapping(ctx context.Context, productID uuid.UUID, unit string, from time.Time, to *time.Time, excludeID *uuid.UUID) ([]Rate, error)
}
