package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/catalog"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Product DTOs
// =============================================================================

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=50"`
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=2000"`
	DefaultUnit string `json:"default_unit" binding:"required,min=1,max=20"`
	IsActive    *bool  `json:"is_active"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Code        *string `json:"code" binding:"omitempty,min=1,max=50"`
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	DefaultUnit *string `json:"default_unit" binding:"omitempty,min=1,max=20"`
	IsActive    *bool   `json:"is_active"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DefaultUnit string    `json:"default_unit"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search      string `form:"search"`
	IsActive    *bool  `form:"is_active"`
	DefaultUnit string `form:"default_unit"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		DefaultUnit: p.DefaultUnit,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// ToProductResponses converts a slice of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

func (f ProductListFilter) toDomain() shared.Filter {
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
	if f.IsActive != nil {
		filter.Filters["is_active"] = *f.IsActive
	}
	if f.DefaultUnit != "" {
		filter.Filters["default_unit"] = f.DefaultUnit
	}
	return filter.Normalize()
}

// =============================================================================
// Rate DTOs
// =============================================================================

// CreateRateRequest represents a request to create a new rate.
// Dates use the YYYY-MM-DD format; an empty effective_to is open-ended.
type CreateRateRequest struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	Unit          string          `json:"unit" binding:"required,min=1,max=20"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveFrom string          `json:"effective_from" binding:"required,datetime=2006-01-02"`
	EffectiveTo   string          `json:"effective_to" binding:"omitempty,datetime=2006-01-02"`
	IsActive      *bool           `json:"is_active"`
	Notes         string          `json:"notes" binding:"max=1000"`
}

// UpdateRateRequest represents a request to update a rate. The product of a
// rate cannot change.
type UpdateRateRequest struct {
	Unit          *string          `json:"unit" binding:"omitempty,min=1,max=20"`
	Rate          *decimal.Decimal `json:"rate"`
	EffectiveFrom *string          `json:"effective_from" binding:"omitempty,datetime=2006-01-02"`
	EffectiveTo   *string          `json:"effective_to" binding:"omitempty,datetime=2006-01-02"`
	OpenEnded     bool             `json:"open_ended"`
	IsActive      *bool            `json:"is_active"`
	Notes         *string          `json:"notes" binding:"omitempty,max=1000"`
	Version       int              `json:"version" binding:"required,min=1"`
}

// RateResponse represents a rate in API responses
type RateResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Unit          string          `json:"unit"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveFrom string          `json:"effective_from"`
	EffectiveTo   *string         `json:"effective_to"`
	IsActive      bool            `json:"is_active"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// RateListFilter represents filter options for rate list
type RateListFilter struct {
	ProductID   string `form:"product_id" binding:"omitempty,uuid"`
	Unit        string `form:"unit"`
	IsActive    *bool  `form:"is_active"`
	EffectiveOn string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CurrentRateQuery selects the rate effective for a unit on a day.
// Empty values default to the product's default unit and today.
type CurrentRateQuery struct {
	Unit string `form:"unit"`
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ToRateResponse converts a domain Rate to RateResponse
func ToRateResponse(r *catalog.Rate) RateResponse {
	resp := RateResponse{
		ID:            r.ID,
		ProductID:     r.ProductID,
		Unit:          r.Unit,
		Rate:          r.Rate,
		EffectiveFrom: shared.FormatDate(r.EffectiveFrom),
		IsActive:      r.IsActive,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Version:       r.Version,
	}
	if r.EffectiveTo != nil {
		to := shared.FormatDate(*r.EffectiveTo)
		resp.EffectiveTo = &to
	}
	return resp
}

// ToRateResponses converts a slice of domain rates
func ToRateResponses(rates []catalog.Rate) []RateResponse {
	responses := make([]RateResponse, len(rates))
	for i := range rates {
		responses[i] = ToRateResponse(&rates[i])
	}
	return responses
}

func (f RateListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Filters:  make(map[string]any),
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "effective_from"
	}
	if f.ProductID != "" {
		filter.Filters["product_id"] = f.ProductID
	}
	if f.Unit != "" {
		filter.Filters["unit"] = f.Unit
	}
	if f.IsActive != nil {
		filter.Filters["is_active"] = *f.IsActive
	}
	if f.EffectiveOn != "" {
		filter.Filters["effective_on"] = f.EffectiveOn
	}
	return filter.Normalize()
}

// parseOptionalDate parses a YYYY-MM-DD value into a field error
func parseOptionalDate(errs shared.ValidationErrors, field, value string) *time.Time {
	if value == "" {
		return nil
	}
	day, err := shared.ParseDate(value)
	if err != nil {
		errs.Add(field, "must be a date in YYYY-MM-DD format")
		return nil
	}
	return &day
}
