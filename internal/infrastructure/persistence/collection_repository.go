package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/catalog"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/trade"
	"github.com/ledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCollectionRepository implements CollectionRepository using GORM
type GormCollectionRepository struct {
	store versionedStore[trade.Collection, models.CollectionModel, *trade.Collection, *models.CollectionModel]
}

// NewGormCollectionRepository creates a new GormCollectionRepository
func NewGormCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{
		store: newVersionedStore[trade.Collection, models.CollectionModel, *trade.Collection, *models.CollectionModel](db, "collection"),
	}
}

// FindByID finds a collection by ID
func (r *GormCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Collection, error) {
	return r.store.findByID(ctx, id)
}

// FindAll finds collections matching the filter
func (r *GormCollectionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Collection, error) {
	return r.store.list(ctx, filter, CollectionSortFields, "collection_date", r.applyFilter)
}

// Count counts collections matching the filter
func (r *GormCollectionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.store.count(ctx, filter, r.applyFilter)
}

// Create persists a new collection
func (r *GormCollectionRepository) Create(ctx context.Context, collection *trade.Collection) error {
	return r.store.create(ctx, collection)
}

// Update applies mutate under the optimistic version check
func (r *GormCollectionRepository) Update(ctx context.Context, id uuid.UUID, expectedVersion int, mutate shared.MutateFunc[trade.Collection]) (*trade.Collection, error) {
	return r.store.update(ctx, id, expectedVersion, mutate)
}

// Delete soft-deletes a collection
func (r *GormCollectionRepository) Delete(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	return r.store.remove(ctx, id, expectedVersion)
}

func (r *GormCollectionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "notes")
	if id, ok := uuidFilter(filter, "supplier_id"); ok {
		query = query.Where("supplier_id = ?", id)
	}
	if id, ok := uuidFilter(filter, "product_id"); ok {
		query = query.Where("product_id = ?", id)
	}
	if id, ok := uuidFilter(filter, "user_id"); ok {
		query = query.Where("user_id = ?", id)
	}
	if unit, ok := stringFilter(filter, "unit"); ok {
		query = query.Where("unit = ?", catalog.NormalizeUnit(unit))
	}
	return applyDateRange(query, filter, "collection_date")
}

// Ensure GormCollectionRepository implements CollectionRepository
var _ trade.CollectionRepository = (*GormCollectionRepository)(nil)
