package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Collection DTOs ====================

// CreateCollectionRequest represents a request to record a collection.
// The collector is taken from the authenticated user, never from the body.
type CreateCollectionRequest struct {
	SupplierID     uuid.UUID       `json:"supplier_id" binding:"required"`
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	CollectionDate string          `json:"collection_date" binding:"required,datetime=2006-01-02"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit" binding:"required,min=1,max=20"`
	Notes          string          `json:"notes" binding:"max=1000"`
}

// UpdateCollectionRequest represents a request to revise a collection
type UpdateCollectionRequest struct {
	SupplierID     *uuid.UUID       `json:"supplier_id"`
	ProductID      *uuid.UUID       `json:"product_id"`
	CollectionDate *string          `json:"collection_date" binding:"omitempty,datetime=2006-01-02"`
	Quantity       *decimal.Decimal `json:"quantity"`
	Unit           *string          `json:"unit" binding:"omitempty,min=1,max=20"`
	Notes          *string          `json:"notes" binding:"omitempty,max=1000"`
	Version        int              `json:"version" binding:"required,min=1"`
}

// CollectionResponse represents a collection in API responses
type CollectionResponse struct {
	ID             uuid.UUID       `json:"id"`
	SupplierID     uuid.UUID       `json:"supplier_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	RateID         uuid.UUID       `json:"rate_id"`
	UserID         uuid.UUID       `json:"user_id"`
	CollectionDate string          `json:"collection_date"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	RateApplied    decimal.Decimal `json:"rate_applied"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// CollectionListFilter represents filter options for collection list
type CollectionListFilter struct {
	Search     string `form:"search"`
	SupplierID string `form:"supplier_id" binding:"omitempty,uuid"`
	ProductID  string `form:"product_id" binding:"omitempty,uuid"`
	UserID     string `form:"user_id" binding:"omitempty,uuid"`
	Unit       string `form:"unit"`
	DateFrom   string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo     string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCollectionResponse converts a domain Collection to CollectionResponse
func ToCollectionResponse(c *trade.Collection) CollectionResponse {
	return CollectionResponse{
		ID:             c.ID,
		SupplierID:     c.SupplierID,
		ProductID:      c.ProductID,
		RateID:         c.RateID,
		UserID:         c.UserID,
		CollectionDate: shared.FormatDate(c.CollectionDate),
		Quantity:       c.Quantity,
		Unit:           c.Unit,
		RateApplied:    c.RateApplied,
		TotalAmount:    c.TotalAmount,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}

// ToCollectionResponses converts a slice of domain collections
func ToCollectionResponses(collections []trade.Collection) []CollectionResponse {
	responses := make([]CollectionResponse, len(collections))
	for i := range collections {
		responses[i] = ToCollectionResponse(&collections[i])
	}
	return responses
}

func (f CollectionListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "collection_date"
	}
	set := func(key, value string) {
		if value != "" {
			filter.Filters[key] = value
		}
	}
	set("supplier_id", f.SupplierID)
	set("product_id", f.ProductID)
	set("user_id", f.UserID)
	set("unit", f.Unit)
	set("date_from", f.DateFrom)
	set("date_to", f.DateTo)
	return filter.Normalize()
}
