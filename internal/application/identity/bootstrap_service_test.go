package identity

import (
	"context"
	"testing"

	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var adminInput = BootstrapInput{
	AdminName:     "Admin",
	AdminEmail:    "admin@example.com",
	AdminPassword: "ChangeMe123",
}

func TestBootstrapService_Seed_EmptyDatabase(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	svc := NewBootstrapService(users, roles, passthroughTx{}, zap.NewNop())

	var created []*identity.Role
	roles.On("FindByName", ctx, identity.RoleAdmin).Return(nil, shared.ErrNotFound)
	roles.On("FindByName", ctx, identity.RoleCollector).Return(nil, shared.ErrNotFound)
	roles.On("Create", ctx, mock.AnythingOfType("*identity.Role")).
		Run(func(args mock.Arguments) { created = append(created, args.Get(1).(*identity.Role)) }).
		Return(nil)
	users.On("Count", ctx, mock.Anything).Return(int64(0), nil)

	var admin *identity.User
	users.On("Create", ctx, mock.AnythingOfType("*identity.User")).
		Run(func(args mock.Arguments) { admin = args.Get(1).(*identity.User) }).
		Return(nil)

	result, err := svc.Seed(ctx, adminInput)

	require.NoError(t, err)
	assert.Equal(t, []string{identity.RoleAdmin, identity.RoleCollector}, result.RolesCreated)
	assert.True(t, result.AdminCreated)

	require.Len(t, created, 2)
	assert.True(t, created[0].IsSystem)
	assert.True(t, created[0].HasPermission("user:delete"))
	assert.True(t, created[1].IsSystem)
	assert.True(t, created[1].HasPermission("collection:create"))
	assert.False(t, created[1].HasPermission("user:create"))

	require.NotNil(t, admin)
	assert.Equal(t, created[0].ID, admin.RoleID)
	assert.True(t, admin.VerifyPassword("ChangeMe123"))
}

func TestBootstrapService_Seed_Idempotent(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	svc := NewBootstrapService(users, roles, passthroughTx{}, zap.NewNop())

	admin, err := identity.NewSystemRole(identity.RoleAdmin, "Administrator", []string{"*"})
	require.NoError(t, err)
	collector, err := identity.NewSystemRole(identity.RoleCollector, "Collector", collectorPermissions)
	require.NoError(t, err)
	roles.On("FindByName", ctx, identity.RoleAdmin).Return(admin, nil)
	roles.On("FindByName", ctx, identity.RoleCollector).Return(collector, nil)
	users.On("Count", ctx, mock.Anything).Return(int64(3), nil)

	result, err := svc.Seed(ctx, adminInput)

	require.NoError(t, err)
	assert.Empty(t, result.RolesCreated)
	assert.False(t, result.AdminCreated)
	roles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBootstrapService_Seed_NoAdminConfigured(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	svc := NewBootstrapService(users, roles, passthroughTx{}, nil)

	admin, _ := identity.NewSystemRole(identity.RoleAdmin, "Administrator", []string{"*"})
	collector, _ := identity.NewSystemRole(identity.RoleCollector, "Collector", collectorPermissions)
	roles.On("FindByName", ctx, identity.RoleAdmin).Return(admin, nil)
	roles.On("FindByName", ctx, identity.RoleCollector).Return(collector, nil)
	users.On("Count", ctx, mock.Anything).Return(int64(0), nil)

	result, err := svc.Seed(ctx, BootstrapInput{})

	require.NoError(t, err)
	assert.False(t, result.AdminCreated)
}
