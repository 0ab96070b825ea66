package identity

import (
	"regexp"
	"strings"

	"github.com/ledger/backend/internal/domain/shared"
)

// Built-in roles seeded on first start
const (
	RoleAdmin     = "admin"
	RoleCollector = "collector"
)

var roleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ErrSystemRole is returned when a system role would be renamed or deleted
var ErrSystemRole = shared.NewDomainError("SYSTEM_ROLE", "System roles cannot be renamed or deleted")

// Role is a named set of permissions
type Role struct {
	shared.BaseAggregateRoot
	Name        string
	DisplayName string
	Description string
	Permissions []string
	IsSystem    bool
}

// NewRole creates a new role
func NewRole(name, displayName string, permissions []string) (*Role, error) {
	errs := shared.ValidationErrors{}
	validateRoleName(errs, name)
	validatePermissions(errs, permissions)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if displayName == "" {
		displayName = name
	}
	return &Role{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		DisplayName:       displayName,
		Permissions:       NormalizePermissions(permissions),
	}, nil
}

// NewSystemRole creates a built-in role that cannot be renamed or deleted
func NewSystemRole(name, displayName string, permissions []string) (*Role, error) {
	r, err := NewRole(name, displayName, permissions)
	if err != nil {
		return nil, err
	}
	r.IsSystem = true
	return r, nil
}

// Rename changes the role name
func (r *Role) Rename(name string) error {
	if r.IsSystem && name != r.Name {
		return ErrSystemRole
	}
	errs := shared.ValidationErrors{}
	validateRoleName(errs, name)
	if err := errs.Err(); err != nil {
		return err
	}
	r.Name = strings.TrimSpace(name)
	return nil
}

// Describe sets the display name and description
func (r *Role) Describe(displayName, description string) error {
	errs := shared.ValidationErrors{}
	if strings.TrimSpace(displayName) == "" {
		errs.Add("display_name", "is required")
	} else if len(displayName) > 100 {
		errs.Add("display_name", "must not exceed 100 characters")
	}
	if len(description) > 500 {
		errs.Add("description", "must not exceed 500 characters")
	}
	if err := errs.Err(); err != nil {
		return err
	}
	r.DisplayName = displayName
	r.Description = description
	return nil
}

// SetPermissions replaces the permission set
func (r *Role) SetPermissions(permissions []string) error {
	errs := shared.ValidationErrors{}
	validatePermissions(errs, permissions)
	if err := errs.Err(); err != nil {
		return err
	}
	r.Permissions = NormalizePermissions(permissions)
	return nil
}

// CanDelete reports whether the role may be removed
func (r *Role) CanDelete() error {
	if r.IsSystem {
		return ErrSystemRole
	}
	return nil
}

// HasPermission reports whether the role grants code
func (r *Role) HasPermission(code string) bool {
	return GrantsPermission(r.Permissions, code)
}

func validateRoleName(errs shared.ValidationErrors, name string) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		errs.Add("name", "is required")
	case len(name) > 50:
		errs.Add("name", "must not exceed 50 characters")
	case !roleNamePattern.MatchString(name):
		errs.Add("name", "must be lower case letters, digits and underscores, starting with a letter")
	}
}

func validatePermissions(errs shared.ValidationErrors, permissions []string) {
	for _, code := range NormalizePermissions(permissions) {
		if !IsKnownPermission(code) {
			errs.Add("permissions", "unknown permission "+code)
		}
	}
}
