package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/finance"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	store versionedStore[finance.Payment, models.PaymentModel, *finance.Payment, *models.PaymentModel]
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{
		store: newVersionedStore[finance.Payment, models.PaymentModel, *finance.Payment, *models.PaymentModel](db, "payment"),
	}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	return r.store.findByID(ctx, id)
}

// FindAll finds payments matching the filter
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Payment, error) {
	return r.store.list(ctx, filter, PaymentSortFields, "payment_date", r.applyFilter)
}

// Count counts payments matching the filter
func (r *GormPaymentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.store.count(ctx, filter, r.applyFilter)
}

// Create persists a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	return r.store.create(ctx, payment)
}

// Update applies mutate under the optimistic version check
func (r *GormPaymentRepository) Update(ctx context.Context, id uuid.UUID, expectedVersion int, mutate shared.MutateFunc[finance.Payment]) (*finance.Payment, error) {
	return r.store.update(ctx, id, expectedVersion, mutate)
}

// Delete soft-deletes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	return r.store.remove(ctx, id, expectedVersion)
}

func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "reference_number", "notes")
	if id, ok := uuidFilter(filter, "supplier_id"); ok {
		query = query.Where("supplier_id = ?", id)
	}
	if id, ok := uuidFilter(filter, "user_id"); ok {
		query = query.Where("user_id = ?", id)
	}
	if t, ok := stringFilter(filter, "payment_type"); ok {
		query = query.Where("payment_type = ?", t)
	}
	if m, ok := stringFilter(filter, "payment_method"); ok {
		query = query.Where("payment_method = ?", m)
	}
	return applyDateRange(query, filter, "payment_date")
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
