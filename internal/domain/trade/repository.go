package trade

import (
	"github.com/ledger/backend/internal/domain/shared"
)

// CollectionRepository defines the interface for collection persistence.
// FindAll understands the filters supplier_id, product_id, user_id,
// date_from and date_to.
type CollectionRepository interface {
	shared.VersionedRepository[Collection]
}
