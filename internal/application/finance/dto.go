package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/finance"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest represents a request to record a payment.
// The recording user comes from the authenticated session.
type CreatePaymentRequest struct {
	SupplierID      uuid.UUID       `json:"supplier_id" binding:"required"`
	PaymentDate     string          `json:"payment_date" binding:"required,datetime=2006-01-02"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentType     string          `json:"payment_type" binding:"required,oneof=advance partial full adjustment"`
	PaymentMethod   string          `json:"payment_method" binding:"omitempty,oneof=cash bank_transfer mobile_money cheque other"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	Notes           string          `json:"notes" binding:"max=1000"`
}

// UpdatePaymentRequest represents a request to revise a payment
type UpdatePaymentRequest struct {
	SupplierID      *uuid.UUID       `json:"supplier_id"`
	PaymentDate     *string          `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	Amount          *decimal.Decimal `json:"amount"`
	PaymentType     *string          `json:"payment_type" binding:"omitempty,oneof=advance partial full adjustment"`
	PaymentMethod   *string          `json:"payment_method" binding:"omitempty,oneof=cash bank_transfer mobile_money cheque other"`
	ReferenceNumber *string          `json:"reference_number" binding:"omitempty,max=100"`
	Notes           *string          `json:"notes" binding:"omitempty,max=1000"`
	Version         int              `json:"version" binding:"required,min=1"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	UserID          uuid.UUID       `json:"user_id"`
	PaymentDate     string          `json:"payment_date"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentType     string          `json:"payment_type"`
	PaymentMethod   string          `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// PaymentListFilter represents filter options for payment list
type PaymentListFilter struct {
	Search        string `form:"search"`
	SupplierID    string `form:"supplier_id" binding:"omitempty,uuid"`
	UserID        string `form:"user_id" binding:"omitempty,uuid"`
	PaymentType   string `form:"payment_type" binding:"omitempty,oneof=advance partial full adjustment"`
	PaymentMethod string `form:"payment_method" binding:"omitempty,oneof=cash bank_transfer mobile_money cheque other"`
	DateFrom      string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo        string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		SupplierID:      p.SupplierID,
		UserID:          p.UserID,
		PaymentDate:     shared.FormatDate(p.PaymentDate),
		Amount:          p.Amount,
		PaymentType:     string(p.PaymentType),
		PaymentMethod:   string(p.PaymentMethod),
		ReferenceNumber: p.ReferenceNumber,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Version:         p.Version,
	}
}

// ToPaymentResponses converts a slice of domain payments
func ToPaymentResponses(payments []finance.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}

func (f PaymentListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "payment_date"
	}
	for key, value := range map[string]string{
		"supplier_id":    f.SupplierID,
		"user_id":        f.UserID,
		"payment_type":   f.PaymentType,
		"payment_method": f.PaymentMethod,
		"date_from":      f.DateFrom,
		"date_to":        f.DateTo,
	} {
		if value != "" {
			filter.Filters[key] = value
		}
	}
	return filter.Normalize()
}
