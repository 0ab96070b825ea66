package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRoleRepository implements RoleRepository using GORM
type GormRoleRepository struct {
	store versionedStore[identity.Role, models.RoleModel, *identity.Role, *models.RoleModel]
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{
		store: newVersionedStore[identity.Role, models.RoleModel, *identity.Role, *models.RoleModel](db, "role"),
	}
}

// FindByID finds a role by ID
func (r *GormRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	return r.store.findByID(ctx, id)
}

// FindByName finds a role by its unique name
func (r *GormRoleRepository) FindByName(ctx context.Context, name string) (*identity.Role, error) {
	return r.store.findOne(ctx, "name = ?", name)
}

// ExistsByName checks whether another role already uses the name
func (r *GormRoleRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	return r.store.exists(ctx, excludeID, "name = ?", name)
}

// CountUsers counts live users assigned to the role
func (r *GormRoleRepository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.store.conn(ctx).Model(&models.UserModel{}).Where("role_id = ?", roleID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count role users: %w", err)
	}
	return count, nil
}

// FindAll finds roles matching the filter
func (r *GormRoleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Role, error) {
	return r.store.list(ctx, filter, RoleSortFields, "name", r.applyFilter)
}

// Count counts roles matching the filter
func (r *GormRoleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.store.count(ctx, filter, r.applyFilter)
}

// Create persists a new role
func (r *GormRoleRepository) Create(ctx context.Context, role *identity.Role) error {
	return r.store.create(ctx, role)
}

// Update applies mutate under the optimistic version check
func (r *GormRoleRepository) Update(ctx context.Context, id uuid.UUID, expectedVersion int, mutate shared.MutateFunc[identity.Role]) (*identity.Role, error) {
	return r.store.update(ctx, id, expectedVersion, mutate)
}

// Delete soft-deletes a role
func (r *GormRoleRepository) Delete(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	return r.store.remove(ctx, id, expectedVersion)
}

func (r *GormRoleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "name", "display_name")
	if system, ok := boolFilter(filter, "is_system"); ok {
		query = query.Where("is_system = ?", system)
	}
	return query
}

// Ensure GormRoleRepository implements RoleRepository
var _ identity.RoleRepository = (*GormRoleRepository)(nil)
