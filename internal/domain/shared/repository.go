package shared

import (
	"context"

	"github.com/google/uuid"
)

// MutateFunc applies requested changes to an aggregate loaded inside the
// compare-and-swap transaction. ctx is bound to that transaction, so
// repository reads made through it see the same snapshot. Returning an
// error aborts the write.
type MutateFunc[T any] func(ctx context.Context, entity *T) error

// Repository is the base interface for all repositories
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, filter Filter) ([]T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Create(ctx context.Context, entity *T) error
}

// VersionedRepository persists aggregates guarded by an optimistic version.
type VersionedRepository[T any] interface {
	Repository[T]
	// Update loads the aggregate, checks expectedVersion, applies mutate,
	// bumps the version by one and writes it back in one transaction.
	// A mismatch yields *VersionConflictError carrying the current state.
	Update(ctx context.Context, id uuid.UUID, expectedVersion int, mutate MutateFunc[T]) (*T, error)
	// Delete soft-deletes the aggregate. A nil expectedVersion skips the check.
	Delete(ctx context.Context, id uuid.UUID, expectedVersion *int) error
}

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: defaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// Normalize clamps paging values into their allowed ranges
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	if f.OrderDir != "asc" {
		f.OrderDir = "desc"
	}
	if f.Filters == nil {
		f.Filters = make(map[string]interface{})
	}
	return f
}

// Offset returns the row offset of the current page
func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
