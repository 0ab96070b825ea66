package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
)

// RoleRepository defines the interface for role persistence
type RoleRepository interface {
	shared.VersionedRepository[Role]

	// FindByName finds a role by its unique name
	FindByName(ctx context.Context, name string) (*Role, error)

	// ExistsByName checks whether another role already uses the name
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)

	// CountUsers counts live users assigned to the role
	CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error)
}

// UserRepository defines the interface for user persistence.
// FindAll understands the filters role_id and is_active.
type UserRepository interface {
	shared.VersionedRepository[User]

	// FindByEmail finds a user by login email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks whether another user already uses the email
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)

	// TouchLastLogin records a login time without bumping the version
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
