package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRoleService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates role with normalized permissions", func(t *testing.T) {
		roles := new(MockRoleRepository)
		svc := NewRoleService(roles)
		roles.On("ExistsByName", ctx, "auditor", (*uuid.UUID)(nil)).Return(false, nil)
		roles.On("Create", ctx, mock.AnythingOfType("*identity.Role")).Return(nil)

		resp, err := svc.Create(ctx, CreateRoleRequest{
			Name:        "auditor",
			DisplayName: "Auditor",
			Description: "Read-only access",
			Permissions: []string{"report:read", " Supplier:Read ", "report:read"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"report:read", "supplier:read"}, resp.Permissions)
		assert.Equal(t, "Read-only access", resp.Description)
		assert.False(t, resp.IsSystem)
	})

	t.Run("unknown permission is a field error", func(t *testing.T) {
		svc := NewRoleService(new(MockRoleRepository))

		_, err := svc.Create(ctx, CreateRoleRequest{Name: "auditor", Permissions: []string{"ledger:destroy"}})

		var verrs shared.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "permissions")
	})

	t.Run("duplicate name", func(t *testing.T) {
		roles := new(MockRoleRepository)
		svc := NewRoleService(roles)
		roles.On("ExistsByName", ctx, "auditor", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := svc.Create(ctx, CreateRoleRequest{Name: "auditor"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestRoleService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("system role cannot be renamed", func(t *testing.T) {
		roles := new(MockRoleRepository)
		svc := NewRoleService(roles)
		admin, err := identity.NewSystemRole(identity.RoleAdmin, "Administrator", []string{"*"})
		require.NoError(t, err)
		roles.On("Update", ctx, admin.ID, 1).Return(admin, nil)

		name := "superuser"
		_, err = svc.Update(ctx, admin.ID, UpdateRoleRequest{Name: &name, Version: 1})

		assert.ErrorIs(t, err, identity.ErrSystemRole)
	})

	t.Run("system role permissions may change", func(t *testing.T) {
		roles := new(MockRoleRepository)
		svc := NewRoleService(roles)
		collector, err := identity.NewSystemRole(identity.RoleCollector, "Collector", []string{"collection:create"})
		require.NoError(t, err)
		roles.On("Update", ctx, collector.ID, 1).Return(collector, nil)

		perms := []string{"collection:create", "collection:read"}
		resp, err := svc.Update(ctx, collector.ID, UpdateRoleRequest{Permissions: &perms, Version: 1})

		require.NoError(t, err)
		assert.Equal(t, perms, resp.Permissions)
		assert.Equal(t, 2, resp.Version)
	})

	t.Run("stale version", func(t *testing.T) {
		roles := new(MockRoleRepository)
		svc := NewRoleService(roles)
		role := createTestRole(t)
		role.Version = 3
		roles.On("Update", ctx, role.ID, 2).Return(role, nil)

		desc := "x"
		_, err := svc.Update(ctx, role.ID, UpdateRoleRequest{Description: &desc, Version: 2})

		conflict, ok := shared.AsVersionConflict(err)
		require.True(t, ok)
		assert.IsType(t, RoleResponse{}, conflict.Current)
	})
}

func TestRoleService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("system role", func(t *testing.T) {
		roles := new(MockRoleRepository)
		svc := NewRoleService(roles)
		admin, err := identity.NewSystemRole(identity.RoleAdmin, "Administrator", []string{"*"})
		require.NoError(t, err)
		roles.On("FindByID", ctx, admin.ID).Return(admin, nil)

		err = svc.Delete(ctx, admin.ID, nil)

		assert.ErrorIs(t, err, identity.ErrSystemRole)
		roles.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("role in use", func(t *testing.T) {
		roles := new(MockRoleRepository)
		svc := NewRoleService(roles)
		role := createTestRole(t)
		roles.On("FindByID", ctx, role.ID).Return(role, nil)
		roles.On("CountUsers", ctx, role.ID).Return(int64(2), nil)

		err := svc.Delete(ctx, role.ID, nil)

		assert.ErrorIs(t, err, ErrRoleInUse)
	})

	t.Run("unused custom role", func(t *testing.T) {
		roles := new(MockRoleRepository)
		svc := NewRoleService(roles)
		role := createTestRole(t)
		version := 1
		roles.On("FindByID", ctx, role.ID).Return(role, nil)
		roles.On("CountUsers", ctx, role.ID).Return(int64(0), nil)
		roles.On("Delete", ctx, role.ID, &version).Return(nil)

		require.NoError(t, svc.Delete(ctx, role.ID, &version))
		roles.AssertExpectations(t)
	})
}

func TestRoleService_Permissions(t *testing.T) {
	svc := NewRoleService(new(MockRoleRepository))

	perms := svc.Permissions()

	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = p.Code
	}
	assert.Contains(t, codes, "collection:create")
	assert.Contains(t, codes, "report:export")
	assert.NotContains(t, codes, "*")
}
