package finance

import (
	"github.com/ledger/backend/internal/domain/shared"
)

// PaymentRepository defines the interface for payment persistence.
// FindAll understands the filters supplier_id, user_id, payment_type,
// date_from and date_to.
type PaymentRepository interface {
	shared.VersionedRepository[Payment]
}
