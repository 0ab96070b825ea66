package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/identity"
)

// RoleModel is the persistence model for the Role aggregate.
// Permissions are stored as a JSON array of permission codes.
type RoleModel struct {
	AggregateModel
	Name        string   `gorm:"type:varchar(50);not null;uniqueIndex:idx_roles_name,where:deleted_at IS NULL"`
	DisplayName string   `gorm:"type:varchar(100);not null"`
	Description string   `gorm:"type:text"`
	Permissions []string `gorm:"type:jsonb;serializer:json;not null"`
	IsSystem    bool     `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the persistence model to a domain Role entity.
func (m *RoleModel) ToDomain() *identity.Role {
	perms := make([]string, len(m.Permissions))
	copy(perms, m.Permissions)
	return &identity.Role{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		DisplayName:       m.DisplayName,
		Description:       m.Description,
		Permissions:       perms,
		IsSystem:          m.IsSystem,
	}
}

// FromDomain populates the persistence model from a domain Role entity.
func (m *RoleModel) FromDomain(r *identity.Role) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Name = r.Name
	m.DisplayName = r.DisplayName
	m.Description = r.Description
	m.Permissions = append([]string{}, r.Permissions...)
	m.IsSystem = r.IsSystem
}

// UserModel is the persistence model for the User aggregate.
type UserModel struct {
	AggregateModel
	Name         string     `gorm:"type:varchar(100);not null"`
	Email        string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_users_email,where:deleted_at IS NULL"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	RoleID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	IsActive     bool       `gorm:"not null;default:true"`
	LastLoginAt  *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		RoleID:            m.RoleID,
		IsActive:          m.IsActive,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.RoleID = u.RoleID
	m.IsActive = u.IsActive
	m.LastLoginAt = u.LastLoginAt
}
