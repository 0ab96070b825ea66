package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// domainPtr constrains a pointer to a domain aggregate.
type domainPtr[D any] interface {
	*D
	shared.AggregateRoot
}

// modelPtr constrains a pointer to a persistence model mapping to D.
type modelPtr[D any, M any] interface {
	*M
	ToDomain() *D
	FromDomain(*D)
}

// versionedStore implements the compare-and-swap write path shared by every
// aggregate repository. Updates run as: load, compare version, mutate,
// bump version, guarded UPDATE ... WHERE id = ? AND version = ?.
type versionedStore[D any, M any, PD domainPtr[D], PM modelPtr[D, M]] struct {
	db       *gorm.DB
	resource string
}

func newVersionedStore[D any, M any, PD domainPtr[D], PM modelPtr[D, M]](db *gorm.DB, resource string) versionedStore[D, M, PD, PM] {
	return versionedStore[D, M, PD, PM]{db: db, resource: resource}
}

func (s versionedStore[D, M, PD, PM]) conn(ctx context.Context) *gorm.DB {
	return conn(ctx, s.db)
}

func (s versionedStore[D, M, PD, PM]) load(db *gorm.DB, id uuid.UUID) (*D, error) {
	var m M
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("load %s: %w", s.resource, err)
	}
	return PM(&m).ToDomain(), nil
}

func (s versionedStore[D, M, PD, PM]) findByID(ctx context.Context, id uuid.UUID) (*D, error) {
	return s.load(s.conn(ctx), id)
}

// findOne returns the first row matching query, or shared.ErrNotFound.
func (s versionedStore[D, M, PD, PM]) findOne(ctx context.Context, query string, args ...any) (*D, error) {
	var m M
	if err := s.conn(ctx).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find %s: %w", s.resource, err)
	}
	return PM(&m).ToDomain(), nil
}

// exists reports whether a live row matches query, optionally ignoring excludeID.
func (s versionedStore[D, M, PD, PM]) exists(ctx context.Context, excludeID *uuid.UUID, query string, args ...any) (bool, error) {
	var count int64
	q := s.conn(ctx).Model(new(M)).Where(query, args...)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check %s existence: %w", s.resource, err)
	}
	return count > 0, nil
}

// list runs the scoped query with ordering and paging applied.
func (s versionedStore[D, M, PD, PM]) list(ctx context.Context, filter shared.Filter, sortFields map[string]bool, defaultSort string, scope func(*gorm.DB, shared.Filter) *gorm.DB) ([]D, error) {
	filter = filter.Normalize()
	query := scope(s.conn(ctx).Model(new(M)), filter)

	sortField := ValidateSortField(filter.OrderBy, sortFields, defaultSort)
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder).Order("id " + sortOrder)
	query = query.Offset(filter.Offset()).Limit(filter.PageSize)

	var rows []M
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.resource, err)
	}
	out := make([]D, len(rows))
	for i := range rows {
		out[i] = *PM(&rows[i]).ToDomain()
	}
	return out, nil
}

func (s versionedStore[D, M, PD, PM]) count(ctx context.Context, filter shared.Filter, scope func(*gorm.DB, shared.Filter) *gorm.DB) (int64, error) {
	var total int64
	if err := scope(s.conn(ctx).Model(new(M)), filter.Normalize()).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", s.resource, err)
	}
	return total, nil
}

func (s versionedStore[D, M, PD, PM]) create(ctx context.Context, entity *D) error {
	var m M
	PM(&m).FromDomain(entity)
	if err := s.conn(ctx).Create(&m).Error; err != nil {
		return s.translate(err)
	}
	return nil
}

// update performs the compare-and-swap write. mutate receives a context
// bound to the transaction.
func (s versionedStore[D, M, PD, PM]) update(ctx context.Context, id uuid.UUID, expected int, mutate shared.MutateFunc[D]) (*D, error) {
	var result *D
	err := inTransaction(ctx, s.db, func(txCtx context.Context, tx *gorm.DB) error {
		entity, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if current := PD(entity).GetVersion(); current != expected {
			return shared.NewVersionConflictError(s.resource, expected, current, entity)
		}

		if mutate != nil {
			if err := mutate(txCtx, entity); err != nil {
				return err
			}
		}
		PD(entity).IncrementVersion()
		PD(entity).Touch()

		var next M
		PM(&next).FromDomain(entity)
		res := tx.Model(&next).
			Select("*").
			Omit("id", "created_at", "deleted_at").
			Where("id = ? AND version = ?", id, expected).
			Updates(&next)
		if res.Error != nil {
			return s.translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return s.lostRace(tx, id, expected)
		}
		result = PM(&next).ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// remove soft-deletes the row. A nil expected skips the version check.
func (s versionedStore[D, M, PD, PM]) remove(ctx context.Context, id uuid.UUID, expected *int) error {
	return inTransaction(ctx, s.db, func(_ context.Context, tx *gorm.DB) error {
		entity, err := s.load(tx, id)
		if err != nil {
			return err
		}
		q := tx.Where("id = ?", id)
		if expected != nil {
			if current := PD(entity).GetVersion(); current != *expected {
				return shared.NewVersionConflictError(s.resource, *expected, current, entity)
			}
			q = q.Where("version = ?", *expected)
		}
		res := q.Delete(new(M))
		if res.Error != nil {
			return fmt.Errorf("delete %s: %w", s.resource, res.Error)
		}
		if res.RowsAffected == 0 {
			if expected == nil {
				return shared.ErrNotFound
			}
			return s.lostRace(tx, id, *expected)
		}
		return nil
	})
}

// lostRace builds the error for a guarded write that matched no row:
// either the row vanished or another writer bumped the version first.
func (s versionedStore[D, M, PD, PM]) lostRace(tx *gorm.DB, id uuid.UUID, expected int) error {
	fresh, err := s.load(tx, id)
	if err != nil {
		return err
	}
	return shared.NewVersionConflictError(s.resource, expected, PD(fresh).GetVersion(), fresh)
}

func (s versionedStore[D, M, PD, PM]) translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return shared.NewDomainError("INVALID_REFERENCE", fmt.Sprintf("%s references a missing record", s.resource))
	}
	return fmt.Errorf("write %s: %w", s.resource, err)
}
