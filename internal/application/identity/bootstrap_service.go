package identity

import (
	"context"
	"errors"

	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BootstrapInput describes the administrator created on an empty database
type BootstrapInput struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// BootstrapResult reports what Seed created
type BootstrapResult struct {
	RolesCreated []string
	AdminCreated bool
}

// collectorPermissions lets field staff record deliveries and payments and
// read what they need to do so
var collectorPermissions = []string{
	identity.PermissionCode(identity.ResourceSupplier, identity.ActionRead),
	identity.PermissionCode(identity.ResourceProduct, identity.ActionRead),
	identity.PermissionCode(identity.ResourceRate, identity.ActionRead),
	identity.PermissionCode(identity.ResourceCollection, identity.ActionRead),
	identity.PermissionCode(identity.ResourceCollection, identity.ActionCreate),
	identity.PermissionCode(identity.ResourceCollection, identity.ActionUpdate),
	identity.PermissionCode(identity.ResourcePayment, identity.ActionRead),
	identity.PermissionCode(identity.ResourcePayment, identity.ActionCreate),
	identity.PermissionCode(identity.ResourceReport, identity.ActionRead),
}

// BootstrapService seeds the built-in roles and the first administrator
type BootstrapService struct {
	userRepo identity.UserRepository
	roleRepo identity.RoleRepository
	tx       shared.TransactionScope
	logger   *zap.Logger
}

// NewBootstrapService creates a new BootstrapService
func NewBootstrapService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	tx shared.TransactionScope,
	logger *zap.Logger,
) *BootstrapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BootstrapService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		tx:       tx,
		logger:   logger,
	}
}

// Seed creates the admin and collector system roles when missing, and the
// bootstrap administrator when no user exists. It is safe to run on every
// start.
func (s *BootstrapService) Seed(ctx context.Context, input BootstrapInput) (*BootstrapResult, error) {
	result := &BootstrapResult{}
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		result.RolesCreated = result.RolesCreated[:0]
		result.AdminCreated = false

		admin, created, err := s.ensureRole(txCtx, identity.RoleAdmin, "Administrator", []string{identity.WildcardPermission})
		if err != nil {
			return err
		}
		if created {
			result.RolesCreated = append(result.RolesCreated, admin.Name)
		}

		collector, created, err := s.ensureRole(txCtx, identity.RoleCollector, "Collector", collectorPermissions)
		if err != nil {
			return err
		}
		if created {
			result.RolesCreated = append(result.RolesCreated, collector.Name)
		}

		users, err := s.userRepo.Count(txCtx, shared.DefaultFilter())
		if err != nil {
			return err
		}
		if users > 0 {
			return nil
		}
		if input.AdminEmail == "" || input.AdminPassword == "" {
			s.logger.Warn("No users exist and no bootstrap admin is configured")
			return nil
		}

		name := input.AdminName
		if name == "" {
			name = "Administrator"
		}
		user, err := identity.NewUser(name, input.AdminEmail, input.AdminPassword, admin.ID)
		if err != nil {
			return err
		}
		if err := s.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		result.AdminCreated = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.RolesCreated) > 0 || result.AdminCreated {
		s.logger.Info("Bootstrap data seeded",
			zap.Strings("roles", result.RolesCreated),
			zap.Bool("admin_created", result.AdminCreated))
	}
	return result, nil
}

func (s *BootstrapService) ensureRole(ctx context.Context, name, displayName string, permissions []string) (*identity.Role, bool, error) {
	role, err := s.roleRepo.FindByName(ctx, name)
	if err == nil {
		return role, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	role, err = identity.NewSystemRole(name, displayName, permissions)
	if err != nil {
		return nil, false, err
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, false, err
	}
	return role, true, nil
}
