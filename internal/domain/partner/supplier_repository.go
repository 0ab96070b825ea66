package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	shared.VersionedRepository[Supplier]

	// FindByCode finds a supplier by its code
	FindByCode(ctx context.Context, code string) (*Supplier, error)

	// ExistsByCode checks whether another supplier already uses the code
	ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)
}
