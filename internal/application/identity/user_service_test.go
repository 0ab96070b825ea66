package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type userFixture struct {
	users     *MockUserRepository
	roles     *MockRoleRepository
	blacklist *auth.InMemoryTokenBlacklist
	svc       *UserService
	role      *identity.Role
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		users:     new(MockUserRepository),
		roles:     new(MockRoleRepository),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		role:      createTestRole(t),
	}
	f.svc = NewUserService(f.users, f.roles, f.blacklist, time.Hour, zap.NewNop())
	return f
}

func (f *userFixture) revoked(t *testing.T, userID uuid.UUID) bool {
	t.Helper()
	revoked, err := f.blacklist.IsUserRevoked(context.Background(), userID.String(), time.Now())
	require.NoError(t, err)
	return revoked
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user without exposing the hash", func(t *testing.T) {
		f := newUserFixture(t)
		f.roles.On("FindByID", ctx, f.role.ID).Return(f.role, nil)
		f.users.On("ExistsByEmail", ctx, "jane@example.com", (*uuid.UUID)(nil)).Return(false, nil)
		f.users.On("Create", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return u.PasswordHash != "" && u.VerifyPassword(testPassword)
		})).Return(nil)

		resp, err := f.svc.Create(ctx, CreateUserRequest{
			Name:     "Jane",
			Email:    "Jane@Example.com",
			Password: testPassword,
			RoleID:   f.role.ID,
		})

		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", resp.Email)
		assert.True(t, resp.IsActive)
		f.users.AssertExpectations(t)
	})

	t.Run("weak password", func(t *testing.T) {
		f := newUserFixture(t)

		_, err := f.svc.Create(ctx, CreateUserRequest{Name: "Jane", Email: "jane@example.com", Password: "password", RoleID: f.role.ID})

		var verrs shared.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "password")
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newUserFixture(t)
		missing := uuid.New()
		f.roles.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Create(ctx, CreateUserRequest{Name: "Jane", Email: "jane@example.com", Password: testPassword, RoleID: missing})

		assert.ErrorIs(t, err, shared.ErrInvalidReference)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newUserFixture(t)
		f.roles.On("FindByID", ctx, f.role.ID).Return(f.role, nil)
		f.users.On("ExistsByEmail", ctx, "jane@example.com", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := f.svc.Create(ctx, CreateUserRequest{Name: "Jane", Email: "jane@example.com", Password: testPassword, RoleID: f.role.ID})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("rename keeps sessions", func(t *testing.T) {
		f := newUserFixture(t)
		user := createTestUser(t, f.role.ID)
		f.users.On("Update", ctx, user.ID, 1).Return(user, nil)

		name := "Renamed"
		resp, err := f.svc.Update(ctx, user.ID, UpdateUserRequest{Name: &name, Version: 1})

		require.NoError(t, err)
		assert.Equal(t, "Renamed", resp.Name)
		assert.False(t, f.revoked(t, user.ID))
	})

	t.Run("empty password keeps the current one", func(t *testing.T) {
		f := newUserFixture(t)
		user := createTestUser(t, f.role.ID)
		hash := user.PasswordHash
		f.users.On("Update", ctx, user.ID, 1).Return(user, nil)

		empty := ""
		_, err := f.svc.Update(ctx, user.ID, UpdateUserRequest{Password: &empty, Version: 1})

		require.NoError(t, err)
		assert.Equal(t, hash, user.PasswordHash)
		assert.False(t, f.revoked(t, user.ID))
	})

	revoking := []struct {
		name  string
		setup func(f *userFixture) UpdateUserRequest
	}{
		{
			name: "password change",
			setup: func(_ *userFixture) UpdateUserRequest {
				p := "NewPassw0rd"
				return UpdateUserRequest{Password: &p, Version: 1}
			},
		},
		{
			name: "deactivation",
			setup: func(_ *userFixture) UpdateUserRequest {
				return UpdateUserRequest{IsActive: boolPtr(false), Version: 1}
			},
		},
		{
			name: "role change",
			setup: func(f *userFixture) UpdateUserRequest {
				other, _ := identity.NewRole("viewer", "Viewer", nil)
				f.roles.On("FindByID", ctx, other.ID).Return(other, nil)
				return UpdateUserRequest{RoleID: &other.ID, Version: 1}
			},
		},
	}
	for _, tt := range revoking {
		t.Run(tt.name+" revokes sessions", func(t *testing.T) {
			f := newUserFixture(t)
			user := createTestUser(t, f.role.ID)
			f.users.On("Update", ctx, user.ID, 1).Return(user, nil)

			_, err := f.svc.Update(ctx, user.ID, tt.setup(f))

			require.NoError(t, err)
			assert.True(t, f.revoked(t, user.ID))
		})
	}

	t.Run("email taken by another user", func(t *testing.T) {
		f := newUserFixture(t)
		user := createTestUser(t, f.role.ID)
		f.users.On("Update", ctx, user.ID, 1).Return(user, nil)
		f.users.On("ExistsByEmail", ctx, "taken@example.com", &user.ID).Return(true, nil)

		email := "taken@example.com"
		_, err := f.svc.Update(ctx, user.ID, UpdateUserRequest{Email: &email, Version: 1})

		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("stale version", func(t *testing.T) {
		f := newUserFixture(t)
		user := createTestUser(t, f.role.ID)
		user.Version = 2
		f.users.On("Update", ctx, user.ID, 1).Return(user, nil)

		_, err := f.svc.Update(ctx, user.ID, UpdateUserRequest{IsActive: boolPtr(false), Version: 1})

		conflict, ok := shared.AsVersionConflict(err)
		require.True(t, ok)
		current, ok := conflict.Current.(UserResponse)
		require.True(t, ok)
		assert.True(t, current.IsActive)
		assert.False(t, f.revoked(t, user.ID))
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("cannot delete yourself", func(t *testing.T) {
		f := newUserFixture(t)
		self := uuid.New()

		err := f.svc.Delete(ctx, self, self, nil)

		assert.ErrorIs(t, err, ErrCannotDeleteSelf)
		f.users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deletes and revokes sessions", func(t *testing.T) {
		f := newUserFixture(t)
		target := uuid.New()
		f.users.On("Delete", ctx, target, (*int)(nil)).Return(nil)

		require.NoError(t, f.svc.Delete(ctx, uuid.New(), target, nil))
		assert.True(t, f.revoked(t, target))
	})
}

func boolPtr(b bool) *bool { return &b }
