package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/auth"
	"github.com/ledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	identity.PasswordCost = bcrypt.MinCost
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, id uuid.UUID, expectedVersion int, mutate shared.MutateFunc[identity.User]) (*identity.User, error) {
	args := m.Called(ctx, id, expectedVersion)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	current := *args.Get(0).(*identity.User)
	if current.Version != expectedVersion {
		return nil, shared.NewVersionConflictError("user", expectedVersion, current.Version, &current)
	}
	if err := mutate(ctx, &current); err != nil {
		return nil, err
	}
	current.IncrementVersion()
	return &current, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	args := m.Called(ctx, id, expectedVersion)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockRoleRepository is a mock implementation of identity.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Role, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Role), args.Error(1)
}

func (m *MockRoleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoleRepository) Create(ctx context.Context, role *identity.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) Update(ctx context.Context, id uuid.UUID, expectedVersion int, mutate shared.MutateFunc[identity.Role]) (*identity.Role, error) {
	args := m.Called(ctx, id, expectedVersion)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	current := *args.Get(0).(*identity.Role)
	if current.Version != expectedVersion {
		return nil, shared.NewVersionConflictError("role", expectedVersion, current.Version, &current)
	}
	if err := mutate(ctx, &current); err != nil {
		return nil, err
	}
	current.IncrementVersion()
	return &current, nil
}

func (m *MockRoleRepository) Delete(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	args := m.Called(ctx, id, expectedVersion)
	return args.Error(0)
}

func (m *MockRoleRepository) FindByName(ctx context.Context, name string) (*identity.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleRepository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).(int64), args.Error(1)
}

var (
	_ identity.UserRepository = (*MockUserRepository)(nil)
	_ identity.RoleRepository = (*MockRoleRepository)(nil)
)

const testPassword = "Password123"

// Helper function to create a test user
func createTestUser(t *testing.T, roleID uuid.UUID) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Test User", "test@example.com", testPassword, roleID)
	require.NoError(t, err)
	return user
}

// Helper function to create a test role
func createTestRole(t *testing.T) *identity.Role {
	t.Helper()
	role, err := identity.NewRole("clerk", "Clerk", []string{"collection:create", "collection:read"})
	require.NoError(t, err)
	return role
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

type authFixture struct {
	users     *MockUserRepository
	roles     *MockRoleRepository
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	svc       *AuthService
	user      *identity.User
	role      *identity.Role
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:     new(MockUserRepository),
		roles:     new(MockRoleRepository),
		jwt:       newTestJWTService(),
		blacklist: auth.NewInMemoryTokenBlacklist(),
	}
	f.role = createTestRole(t)
	f.user = createTestUser(t, f.role.ID)
	f.svc = NewAuthService(f.users, f.roles, f.jwt, f.blacklist, zap.NewNop())
	return f
}

func (f *authFixture) login(t *testing.T) *LoginResult {
	t.Helper()
	ctx := context.Background()
	f.users.On("FindByEmail", ctx, f.user.Email).Return(f.user, nil).Once()
	f.roles.On("FindByID", ctx, f.role.ID).Return(f.role, nil).Once()
	f.users.On("TouchLastLogin", ctx, f.user.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := f.svc.Login(ctx, LoginInput{Email: f.user.Email, Password: testPassword, IP: "127.0.0.1"})
	require.NoError(t, err)
	return result
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)

	result := f.login(t)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, f.user.ID, result.User.ID)
	assert.Equal(t, "clerk", result.User.RoleName)
	assert.ElementsMatch(t, []string{"collection:create", "collection:read"}, result.User.Permissions)
	assert.NotNil(t, result.User.LastLoginAt)

	claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID.String(), claims.UserID)
	assert.Equal(t, f.role.ID.String(), claims.RoleID)
	assert.True(t, claims.HasPermission("collection:create"))
	assert.False(t, claims.HasPermission("payment:create"))

	f.users.AssertExpectations(t)
	f.roles.AssertExpectations(t)
}

func TestAuthService_Login_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", ctx, "nobody@example.com").Return(nil, shared.ErrNotFound)

		_, err := f.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: testPassword})

		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", ctx, f.user.Email).Return(f.user, nil)

		_, err := f.svc.Login(ctx, LoginInput{Email: f.user.Email, Password: "WrongPass1"})

		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
		f.users.AssertNotCalled(t, "TouchLastLogin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("inactive user", func(t *testing.T) {
		f := newAuthFixture(t)
		f.user.Deactivate()
		f.users.On("FindByEmail", ctx, f.user.Email).Return(f.user, nil)

		_, err := f.svc.Login(ctx, LoginInput{Email: f.user.Email, Password: testPassword})

		assert.ErrorIs(t, err, identity.ErrUserInactive)
	})
}

func TestAuthService_Login_LastLoginFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.users.On("FindByEmail", ctx, f.user.Email).Return(f.user, nil)
	f.roles.On("FindByID", ctx, f.role.ID).Return(f.role, nil)
	f.users.On("TouchLastLogin", ctx, f.user.ID, mock.Anything).Return(assert.AnError)

	result, err := f.svc.Login(ctx, LoginInput{Email: f.user.Email, Password: testPassword})

	require.NoError(t, err)
	assert.Nil(t, result.User.LastLoginAt)
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a pair with current permissions and retires the old token", func(t *testing.T) {
		f := newAuthFixture(t)
		login := f.login(t)

		require.NoError(t, f.role.SetPermissions([]string{"payment:read"}))
		f.users.On("FindByID", ctx, f.user.ID).Return(f.user, nil)
		f.roles.On("FindByID", ctx, f.role.ID).Return(f.role, nil)

		result, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})

		require.NoError(t, err)
		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, []string{"payment:read"}, claims.Permissions)

		_, err = f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("deactivated user cannot refresh", func(t *testing.T) {
		f := newAuthFixture(t)
		login := f.login(t)
		f.user.Deactivate()
		f.users.On("FindByID", ctx, f.user.ID).Return(f.user, nil)

		_, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})

		assert.ErrorIs(t, err, identity.ErrUserInactive)
	})

	t.Run("tokens issued before a user revocation are rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		login := f.login(t)
		require.NoError(t, f.blacklist.RevokeUser(ctx, f.user.ID.String(), time.Hour))

		_, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})

		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("access token cannot be used to refresh", func(t *testing.T) {
		f := newAuthFixture(t)
		login := f.login(t)

		_, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.AccessToken})

		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "not-a-token"})

		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	login := f.login(t)
	claims, err := f.jwt.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)

	err = f.svc.Logout(ctx, LogoutInput{
		UserID:       f.user.ID,
		TokenJTI:     claims.ID,
		ExpiresAt:    claims.GetExpiresAtTime(),
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)

	revoked, err := f.blacklist.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked, "access token is blacklisted")

	_, err = f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.users.On("FindByID", ctx, f.user.ID).Return(f.user, nil)
	f.roles.On("FindByID", ctx, f.role.ID).Return(f.role, nil)

	info, err := f.svc.Me(ctx, f.user.ID)

	require.NoError(t, err)
	assert.Equal(t, f.user.Email, info.Email)
	assert.Equal(t, f.role.Name, info.RoleName)
	assert.Equal(t, f.role.Permissions, info.Permissions)
}
