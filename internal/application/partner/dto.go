package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/partner"
	"github.com/ledger/backend/internal/domain/shared"
)

// =============================================================================
// Supplier DTOs
// =============================================================================

// CreateSupplierRequest represents a request to create a new supplier
type CreateSupplierRequest struct {
	Code          string `json:"code" binding:"required,min=1,max=50"`
	Name          string `json:"name" binding:"required,min=1,max=200"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Phone         string `json:"phone" binding:"max=50"`
	Email         string `json:"email" binding:"omitempty,email,max=200"`
	Address       string `json:"address" binding:"max=500"`
	Region        string `json:"region" binding:"max=100"`
	Notes         string `json:"notes"`
	IsActive      *bool  `json:"is_active"`
}

// UpdateSupplierRequest represents a request to update a supplier.
// Version is the version the client last read.
type UpdateSupplierRequest struct {
	Code          *string `json:"code" binding:"omitempty,min=1,max=50"`
	Name          *string `json:"name" binding:"omitempty,min=1,max=200"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=100"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Email         *string `json:"email" binding:"omitempty,email,max=200"`
	Address       *string `json:"address" binding:"omitempty,max=500"`
	Region        *string `json:"region" binding:"omitempty,max=100"`
	Notes         *string `json:"notes"`
	IsActive      *bool   `json:"is_active"`
	Version       int     `json:"version" binding:"required,min=1"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	Region        string    `json:"region"`
	Notes         string    `json:"notes"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int       `json:"version"`
}

// SupplierListFilter represents filter options for supplier list
type SupplierListFilter struct {
	Search   string `form:"search"`
	Region   string `form:"region"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Code:          s.Code,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		Region:        s.Region,
		Notes:         s.Notes,
		IsActive:      s.IsActive,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		Version:       s.Version,
	}
}

// ToSupplierResponses converts a slice of domain suppliers
func ToSupplierResponses(suppliers []partner.Supplier) []SupplierResponse {
	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = ToSupplierResponse(&suppliers[i])
	}
	return responses
}

func (f SupplierListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
		if filter.OrderDir == "" {
			filter.OrderDir = "asc"
		}
	}
	if f.Region != "" {
		filter.Filters["region"] = f.Region
	}
	if f.IsActive != nil {
		filter.Filters["is_active"] = *f.IsActive
	}
	return filter.Normalize()
}
