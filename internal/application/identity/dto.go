package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/shared"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

// UserInfo contains the authenticated user's identity and grants
type UserInfo struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	RoleID      uuid.UUID  `json:"role_id"`
	RoleName    string     `json:"role_name"`
	Permissions []string   `json:"permissions"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LogoutInput identifies the access token being retired. RefreshToken is
// optional; when present it is revoked too.
type LogoutInput struct {
	UserID       uuid.UUID `json:"-"`
	TokenJTI     string    `json:"-"`
	ExpiresAt    time.Time `json:"-"`
	RefreshToken string    `json:"refresh_token"`
}

// =============================================================================
// Role DTOs
// =============================================================================

// CreateRoleRequest represents a request to create a role
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=50"`
	DisplayName string   `json:"display_name" binding:"max=100"`
	Description string   `json:"description" binding:"max=500"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleRequest represents a request to update a role
type UpdateRoleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=50"`
	DisplayName *string   `json:"display_name" binding:"omitempty,min=1,max=100"`
	Description *string   `json:"description" binding:"omitempty,max=500"`
	Permissions *[]string `json:"permissions"`
	Version     int       `json:"version" binding:"required,min=1"`
}

// RoleResponse represents a role in API responses
type RoleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// RoleListFilter represents filter options for role list
type RoleListFilter struct {
	Search   string `form:"search"`
	IsSystem *bool  `form:"is_system"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToRoleResponse converts a domain Role to RoleResponse
func ToRoleResponse(r *identity.Role) RoleResponse {
	permissions := r.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Description: r.Description,
		Permissions: permissions,
		IsSystem:    r.IsSystem,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Version:     r.Version,
	}
}

// ToRoleResponses converts a slice of domain roles
func ToRoleResponses(roles []identity.Role) []RoleResponse {
	responses := make([]RoleResponse, len(roles))
	for i := range roles {
		responses[i] = ToRoleResponse(&roles[i])
	}
	return responses
}

func (f RoleListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
		if filter.OrderDir == "" {
			filter.OrderDir = "asc"
		}
	}
	if f.IsSystem != nil {
		filter.Filters["is_system"] = *f.IsSystem
	}
	return filter.Normalize()
}

// =============================================================================
// User DTOs
// =============================================================================

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Name     string    `json:"name" binding:"required,min=1,max=100"`
	Email    string    `json:"email" binding:"required,email,max=200"`
	Password string    `json:"password" binding:"required,min=8,max=72"`
	RoleID   uuid.UUID `json:"role_id" binding:"required"`
	IsActive *bool     `json:"is_active"`
}

// UpdateUserRequest represents a request to update a user. An empty
// password keeps the current one.
type UpdateUserRequest struct {
	Name     *string    `json:"name" binding:"omitempty,min=1,max=100"`
	Email    *string    `json:"email" binding:"omitempty,email,max=200"`
	Password *string    `json:"password" binding:"omitempty,max=72"`
	RoleID   *uuid.UUID `json:"role_id"`
	IsActive *bool      `json:"is_active"`
	Version  int        `json:"version" binding:"required,min=1"`
}

// UserResponse represents a user in API responses. The password hash never
// leaves the service.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	RoleID      uuid.UUID  `json:"role_id"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// UserListFilter represents filter options for user list
type UserListFilter struct {
	Search   string `form:"search"`
	RoleID   string `form:"role_id" binding:"omitempty,uuid"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		RoleID:      u.RoleID,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		Version:     u.Version,
	}
}

// ToUserResponses converts a slice of domain users
func ToUserResponses(users []identity.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return responses
}

func (f UserListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
		if filter.OrderDir == "" {
			filter.OrderDir = "asc"
		}
	}
	if f.RoleID != "" {
		filter.Filters["role_id"] = f.RoleID
	}
	if f.IsActive != nil {
		filter.Filters["is_active"] = *f.IsActive
	}
	return filter.Normalize()
}
