package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateEmail is returned when an email is already in use
	ErrDuplicateEmail = shared.NewDomainError("ALREADY_EXISTS", "User with this email already exists")
	// ErrUnknownRole is returned when a user is assigned a missing role
	ErrUnknownRole = shared.NewDomainError("INVALID_REFERENCE", "Role not found")
	// ErrCannotDeleteSelf is returned when a user tries to delete their own account
	ErrCannotDeleteSelf = shared.NewDomainError("CANNOT_DELETE_SELF", "You cannot delete your own account")
)

// UserService handles user management. Deactivating or deleting a user, or
// changing their password or role, revokes every token issued to them.
type UserService struct {
	userRepo  identity.UserRepository
	roleRepo  identity.RoleRepository
	blacklist auth.TokenBlacklist
	revokeTTL time.Duration
	logger    *zap.Logger
}

// NewUserService creates a new UserService. revokeTTL should cover the
// longest token lifetime.
func NewUserService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	blacklist auth.TokenBlacklist,
	revokeTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		blacklist: blacklist,
		revokeTTL: revokeTTL,
		logger:    logger,
	}
}

// Create creates a user
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	user, err := identity.NewUser(req.Name, req.Email, req.Password, req.RoleID)
	if err != nil {
		return nil, err
	}
	if req.IsActive != nil && !*req.IsActive {
		user.Deactivate()
	}

	if err := s.ensureRole(ctx, user.RoleID); err != nil {
		return nil, err
	}
	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.String("user_id", user.ID.String()))
	response := ToUserResponse(user)
	return &response, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// List retrieves a page of users
func (s *UserService) List(ctx context.Context, filter UserListFilter) (*shared.Paginated[UserResponse], error) {
	domainFilter := filter.toDomain()

	users, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToUserResponses(users), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies the requested changes if req.Version still matches
func (s *UserService) Update(ctx context.Context, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	revoke := false
	updated, err := s.userRepo.Update(ctx, userID, req.Version, func(txCtx context.Context, user *identity.User) error {
		revoke = false
		if req.Name != nil {
			if err := user.Rename(*req.Name); err != nil {
				return err
			}
		}

		if req.Email != nil {
			if err := user.SetEmail(*req.Email); err != nil {
				return err
			}
			exists, err := s.userRepo.ExistsByEmail(txCtx, user.Email, &user.ID)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateEmail
			}
		}

		if req.Password != nil && *req.Password != "" {
			if err := user.SetPassword(*req.Password); err != nil {
				return err
			}
			revoke = true
		}

		if req.RoleID != nil && *req.RoleID != user.RoleID {
			if err := s.ensureRole(txCtx, *req.RoleID); err != nil {
				return err
			}
			if err := user.AssignRole(*req.RoleID); err != nil {
				return err
			}
			revoke = true
		}

		if req.IsActive != nil && *req.IsActive != user.IsActive {
			if *req.IsActive {
				user.Activate()
			} else {
				user.Deactivate()
				revoke = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, shared.MapConflict(err, ToUserResponse)
	}

	if revoke {
		s.revokeSessions(ctx, updated.ID)
	}
	response := ToUserResponse(updated)
	return &response, nil
}

// Delete soft-deletes a user. actorID is the authenticated user, who may not
// delete their own account.
func (s *UserService) Delete(ctx context.Context, actorID, userID uuid.UUID, version *int) error {
	if actorID == userID {
		return ErrCannotDeleteSelf
	}
	if err := s.userRepo.Delete(ctx, userID, version); err != nil {
		return shared.MapConflict(err, ToUserResponse)
	}

	s.revokeSessions(ctx, userID)
	return nil
}

func (s *UserService) ensureRole(ctx context.Context, roleID uuid.UUID) error {
	if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrUnknownRole
		}
		return err
	}
	return nil
}

func (s *UserService) revokeSessions(ctx context.Context, userID uuid.UUID) {
	if err := s.blacklist.RevokeUser(ctx, userID.String(), s.revokeTTL); err != nil {
		s.logger.Error("Failed to revoke user tokens",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}
