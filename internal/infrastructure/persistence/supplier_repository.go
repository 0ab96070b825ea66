package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/partner"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	store versionedStore[partner.Supplier, models.SupplierModel, *partner.Supplier, *models.SupplierModel]
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{
		store: newVersionedStore[partner.Supplier, models.SupplierModel, *partner.Supplier, *models.SupplierModel](db, "supplier"),
	}
}

// FindByID finds a supplier by ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	return r.store.findByID(ctx, id)
}

// FindByCode finds a supplier by its code
func (r *GormSupplierRepository) FindByCode(ctx context.Context, code string) (*partner.Supplier, error) {
	return r.store.findOne(ctx, "code = ?", code)
}

// ExistsByCode checks whether another supplier already uses the code
func (r *GormSupplierRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	return r.store.exists(ctx, excludeID, "code = ?", code)
}

// FindAll finds suppliers matching the filter
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	return r.store.list(ctx, filter, SupplierSortFields, "name", r.applyFilter)
}

// Count counts suppliers matching the filter
func (r *GormSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.store.count(ctx, filter, r.applyFilter)
}

// Create persists a new supplier
func (r *GormSupplierRepository) Create(ctx context.Context, supplier *partner.Supplier) error {
	return r.store.create(ctx, supplier)
}

// Update applies mutate under the optimistic version check
func (r *GormSupplierRepository) Update(ctx context.Context, id uuid.UUID, expectedVersion int, mutate shared.MutateFunc[partner.Supplier]) (*partner.Supplier, error) {
	return r.store.update(ctx, id, expectedVersion, mutate)
}

// Delete soft-deletes a supplier
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	return r.store.remove(ctx, id, expectedVersion)
}

func (r *GormSupplierRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "code", "name", "contact_person", "phone")
	if region, ok := stringFilter(filter, "region"); ok {
		query = query.Where("region = ?", region)
	}
	if active, ok := boolFilter(filter, "is_active"); ok {
		query = query.Where("is_active = ?", active)
	}
	return query
}

// Ensure GormSupplierRepository implements SupplierRepository
var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
