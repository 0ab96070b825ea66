package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ledger/backend/internal/domain/catalog"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRateRepository implements RateRepository using GORM
type GormRateRepository struct {
	store versionedStore[catalog.Rate, models.RateModel, *catalog.Rate, *models.RateModel]
}

// NewGormRateRepository creates a new GormRateRepository
func NewGormRateRepository(db *gorm.DB) *GormRateRepository {
	return &GormRateRepository{
		store: newVersionedStore[catalog.Rate, models.RateModel, *catalog.Rate, *models.RateModel](db, "rate"),
	}
}

// FindByID finds a rate by ID
func (r *GormRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Rate, error) {
	return r.store.findByID(ctx, id)
}

// FindEffective returns the active rate covering day, latest effective_from first
func (r *GormRateRepository) FindEffective(ctx context.Context, productID uuid.UUID, unit string, day time.Time) (*catalog.Rate, error) {
	day = shared.TruncateDay(day)
	var m models.RateModel
	err := r.store.conn(ctx).
		Where("product_id = ? AND unit = ? AND is_active = ?", productID, catalog.NormalizeUnit(unit), true).
		Where("effective_from <= ?", day).
		Where("(effective_to IS NULL OR effective_to >= ?)", day).
		Order("effective_from DESC").
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find effective rate: %w", err)
	}
	return m.ToDomain(), nil
}

// FindOverlapping returns active rates whose window intersects [from, to]
func (r *GormRateRepository) FindOverlapping(ctx context.Context, productID uuid.UUID, unit string, from time.Time, to *time.Time, excludeID *uuid.UUID) ([]catalog.Rate, error) {
	query := r.store.conn(ctx).
		Where("product_id = ? AND unit = ? AND is_active = ?", productID, catalog.NormalizeUnit(unit), true).
		Where("(effective_to IS NULL OR effective_to >= ?)", shared.TruncateDay(from))
	if to != nil {
		query = query.Where("effective_from <= ?", shared.TruncateDay(*to))
	}
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var rows []models.RateModel
	if err := query.Order("effective_from ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find overlapping rates: %w", err)
	}
	out := make([]catalog.Rate, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// FindAll finds rates matching the filter
func (r *GormRateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Rate, error) {
	return r.store.list(ctx, filter, RateSortFields, "effective_from", r.applyFilter)
}

// Count counts rates matching the filter
func (r *GormRateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.store.count(ctx, filter, r.applyFilter)
}

// Create persists a new rate
func (r *GormRateRepository) Create(ctx context.Context, rate *catalog.Rate) error {
	return overlapError(r.store.create(ctx, rate))
}

// Update applies mutate under the optimistic version check
func (r *GormRateRepository) Update(ctx context.Context, id uuid.UUID, expectedVersion int, mutate shared.MutateFunc[catalog.Rate]) (*catalog.Rate, error) {
	rate, err := r.store.update(ctx, id, expectedVersion, mutate)
	return rate, overlapError(err)
}

// exclusionViolation is the SQLSTATE raised by excl_rates_overlap
const exclusionViolation = "23P01"

// overlapError turns the Postgres exclusion constraint into ErrRateOverlap.
// It catches writers that raced past the application-level overlap check.
func overlapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return catalog.ErrRateOverlap
	}
	return err
}

// Delete soft-deletes a rate
func (r *GormRateRepository) Delete(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	return r.store.remove(ctx, id, expectedVersion)
}

func (r *GormRateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if productID, ok := uuidFilter(filter, "product_id"); ok {
		query = query.Where("product_id = ?", productID)
	}
	if unit, ok := stringFilter(filter, "unit"); ok {
		query = query.Where("unit = ?", catalog.NormalizeUnit(unit))
	}
	if active, ok := boolFilter(filter, "is_active"); ok {
		query = query.Where("is_active = ?", active)
	}
	if day, ok := dateFilter(filter, "effective_on"); ok {
		query = query.Where("effective_from <= ?", day).
			Where("(effective_to IS NULL OR effective_to >= ?)", day)
	}
	return query
}

// Ensure GormRateRepository implements RateRepository
var _ catalog.RateRepository = (*GormRateRepository)(nil)
