package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/catalog"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	store versionedStore[catalog.Product, models.ProductModel, *catalog.Product, *models.ProductModel]
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{
		store: newVersionedStore[catalog.Product, models.ProductModel, *catalog.Product, *models.ProductModel](db, "product"),
	}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.store.findByID(ctx, id)
}

// FindByCode finds a product by its code
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	return r.store.findOne(ctx, "code = ?", code)
}

// ExistsByCode checks whether another product already uses the code
func (r *GormProductRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	return r.store.exists(ctx, excludeID, "code = ?", code)
}

// FindAll finds products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	return r.store.list(ctx, filter, ProductSortFields, "name", r.applyFilter)
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.store.count(ctx, filter, r.applyFilter)
}

// Create persists a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.store.create(ctx, product)
}

// Update applies mutate under the optimistic version check
func (r *GormProductRepository) Update(ctx context.Context, id uuid.UUID, expectedVersion int, mutate shared.MutateFunc[catalog.Product]) (*catalog.Product, error) {
	return r.store.update(ctx, id, expectedVersion, mutate)
}

// Delete soft-deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	return r.store.remove(ctx, id, expectedVersion)
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "code", "name", "description")
	if active, ok := boolFilter(filter, "is_active"); ok {
		query = query.Where("is_active = ?", active)
	}
	if unit, ok := stringFilter(filter, "default_unit"); ok {
		query = query.Where("default_unit = ?", catalog.NormalizeUnit(unit))
	}
	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
