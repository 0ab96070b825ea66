package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	store versionedStore[identity.User, models.UserModel, *identity.User, *models.UserModel]
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{
		store: newVersionedStore[identity.User, models.UserModel, *identity.User, *models.UserModel](db, "user"),
	}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.store.findByID(ctx, id)
}

// FindByEmail finds a user by login email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.store.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// ExistsByEmail checks whether another user already uses the email
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	return r.store.exists(ctx, excludeID, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// TouchLastLogin records a login time without bumping the version
func (r *GormUserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.store.conn(ctx).Model(&models.UserModel{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at)
	if res.Error != nil {
		return fmt.Errorf("touch last login: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindAll finds users matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	return r.store.list(ctx, filter, UserSortFields, "name", r.applyFilter)
}

// Count counts users matching the filter
func (r *GormUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.store.count(ctx, filter, r.applyFilter)
}

// Create persists a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return r.store.create(ctx, user)
}

// Update applies mutate under the optimistic version check
func (r *GormUserRepository) Update(ctx context.Context, id uuid.UUID, expectedVersion int, mutate shared.MutateFunc[identity.User]) (*identity.User, error) {
	return r.store.update(ctx, id, expectedVersion, mutate)
}

// Delete soft-deletes a user
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	return r.store.remove(ctx, id, expectedVersion)
}

func (r *GormUserRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "name", "email")
	if roleID, ok := uuidFilter(filter, "role_id"); ok {
		query = query.Where("role_id = ?", roleID)
	}
	if active, ok := boolFilter(filter, "is_active"); ok {
		query = query.Where("is_active = ?", active)
	}
	return query
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
