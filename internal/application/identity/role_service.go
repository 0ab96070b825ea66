package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/shared"
)

var (
	// ErrDuplicateRoleName is returned when a role name is already in use
	ErrDuplicateRoleName = shared.NewDomainError("ALREADY_EXISTS", "Role with this name already exists")
	// ErrRoleInUse is returned when deleting a role that users still hold
	ErrRoleInUse = shared.NewDomainError("ROLE_IN_USE", "Role is assigned to users and cannot be deleted")
)

// RoleService handles role management
type RoleService struct {
	roleRepo identity.RoleRepository
}

// NewRoleService creates a new RoleService
func NewRoleService(roleRepo identity.RoleRepository) *RoleService {
	return &RoleService{roleRepo: roleRepo}
}

// Create creates a custom role
func (s *RoleService) Create(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	role, err := identity.NewRole(req.Name, req.DisplayName, req.Permissions)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := role.Describe(role.DisplayName, req.Description); err != nil {
			return nil, err
		}
	}

	exists, err := s.roleRepo.ExistsByName(ctx, role.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateRoleName
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	response := ToRoleResponse(role)
	return &response, nil
}

// GetByID retrieves a role by ID
func (s *RoleService) GetByID(ctx context.Context, roleID uuid.UUID) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	response := ToRoleResponse(role)
	return &response, nil
}

// List retrieves a page of roles
func (s *RoleService) List(ctx context.Context, filter RoleListFilter) (*shared.Paginated[RoleResponse], error) {
	domainFilter := filter.toDomain()

	roles, err := s.roleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.roleRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToRoleResponses(roles), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies the requested changes if req.Version still matches.
// System roles keep their name but their description and permissions may
// change.
func (s *RoleService) Update(ctx context.Context, roleID uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error) {
	updated, err := s.roleRepo.Update(ctx, roleID, req.Version, func(txCtx context.Context, role *identity.Role) error {
		if req.Name != nil && *req.Name != role.Name {
			if err := role.Rename(*req.Name); err != nil {
				return err
			}
			exists, err := s.roleRepo.ExistsByName(txCtx, role.Name, &role.ID)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateRoleName
			}
		}

		if req.DisplayName != nil || req.Description != nil {
			displayName, description := role.DisplayName, role.Description
			if req.DisplayName != nil {
				displayName = *req.DisplayName
			}
			if req.Description != nil {
				description = *req.Description
			}
			if err := role.Describe(displayName, description); err != nil {
				return err
			}
		}

		if req.Permissions != nil {
			if err := role.SetPermissions(*req.Permissions); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, shared.MapConflict(err, ToRoleResponse)
	}

	response := ToRoleResponse(updated)
	return &response, nil
}

// Delete removes a custom role that no user holds
func (s *RoleService) Delete(ctx context.Context, roleID uuid.UUID, version *int) error {
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return err
	}
	if err := role.CanDelete(); err != nil {
		return err
	}

	users, err := s.roleRepo.CountUsers(ctx, roleID)
	if err != nil {
		return err
	}
	if users > 0 {
		return ErrRoleInUse
	}

	return shared.MapConflict(s.roleRepo.Delete(ctx, roleID, version), ToRoleResponse)
}

// Permissions returns the catalogue of grantable permissions
func (s *RoleService) Permissions() []identity.Permission {
	return identity.PermissionCatalogue()
}
