package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/report"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RangeQuery bounds a report by calendar day. Both ends are optional and
// inclusive.
type RangeQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

func (q RangeQuery) toDomain() (report.DateRange, error) {
	errs := shared.ValidationErrors{}
	var r report.DateRange
	if q.From != "" {
		from, err := shared.ParseDate(q.From)
		if err != nil {
			errs.Add("from", err.Error())
		} else {
			r.From = &from
		}
	}
	if q.To != "" {
		to, err := shared.ParseDate(q.To)
		if err != nil {
			errs.Add("to", err.Error())
		} else {
			r.To = &to
		}
	}
	if err := errs.Err(); err != nil {
		return report.DateRange{}, err
	}
	if err := r.Validate(); err != nil {
		return report.DateRange{}, err
	}
	return r, nil
}

// ==================== Balances ====================

// SupplierBalanceResponse is a supplier's collected, paid and outstanding amounts
type SupplierBalanceResponse struct {
	SupplierID         uuid.UUID       `json:"supplier_id"`
	SupplierCode       string          `json:"supplier_code"`
	SupplierName       string          `json:"supplier_name"`
	Region             string          `json:"region"`
	TotalCollected     decimal.Decimal `json:"total_collected"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	Balance            decimal.Decimal `json:"balance"`
	CollectionCount    int64           `json:"collection_count"`
	PaymentCount       int64           `json:"payment_count"`
	LastCollectionDate *string         `json:"last_collection_date"`
	LastPaymentDate    *string         `json:"last_payment_date"`
}

// ProductSummaryResponse aggregates one product in one unit
type ProductSummaryResponse struct {
	ProductID       uuid.UUID       `json:"product_id"`
	ProductCode     string          `json:"product_code"`
	ProductName     string          `json:"product_name"`
	Unit            string          `json:"unit"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CollectionCount int64           `json:"collection_count"`
}

// SummaryResponse is the ledger overview for a range
type SummaryResponse struct {
	From            *string                   `json:"from"`
	To              *string                   `json:"to"`
	TotalCollected  decimal.Decimal           `json:"total_collected"`
	TotalPaid       decimal.Decimal           `json:"total_paid"`
	Outstanding     decimal.Decimal           `json:"outstanding"`
	CollectionCount int64                     `json:"collection_count"`
	PaymentCount    int64                     `json:"payment_count"`
	Suppliers       []SupplierBalanceResponse `json:"suppliers"`
	Products        []ProductSummaryResponse  `json:"products"`
	GeneratedAt     time.Time                 `json:"generated_at"`
}

// ==================== Statement ====================

// StatementEntryResponse is one statement line
type StatementEntryResponse struct {
	Date           string          `json:"date"`
	Kind           string          `json:"kind"`
	ReferenceID    uuid.UUID       `json:"reference_id"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit,omitempty"`
	Rate           decimal.Decimal `json:"rate"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// StatementResponse is a supplier statement with running balance
type StatementResponse struct {
	Supplier       SupplierBalanceResponse  `json:"supplier"`
	From           *string                  `json:"from"`
	To             *string                  `json:"to"`
	OpeningBalance decimal.Decimal          `json:"opening_balance"`
	Entries        []StatementEntryResponse `json:"entries"`
	TotalDebit     decimal.Decimal          `json:"total_debit"`
	TotalCredit    decimal.Decimal          `json:"total_credit"`
	ClosingBalance decimal.Decimal          `json:"closing_balance"`
	GeneratedAt    time.Time                `json:"generated_at"`
}

// ==================== Export ====================

// ExportResult is a rendered PDF. When archiving is enabled Data is empty and
// DownloadURL points at the stored copy.
type ExportResult struct {
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	Size        int        `json:"size"`
	StorageKey  string     `json:"storage_key,omitempty"`
	DownloadURL string     `json:"download_url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Data        []byte     `json:"-"`
}

// Archived reports whether the PDF was uploaded instead of returned inline
func (r *ExportResult) Archived() bool {
	return r.DownloadURL != ""
}

// ToSupplierBalanceResponse converts a domain SupplierBalance
func ToSupplierBalanceResponse(b report.SupplierBalance) SupplierBalanceResponse {
	return SupplierBalanceResponse{
		SupplierID:         b.SupplierID,
		SupplierCode:       b.SupplierCode,
		SupplierName:       b.SupplierName,
		Region:             b.Region,
		TotalCollected:     b.TotalCollected,
		TotalPaid:          b.TotalPaid,
		Balance:            b.Balance,
		CollectionCount:    b.CollectionCount,
		PaymentCount:       b.PaymentCount,
		LastCollectionDate: formatOptionalDate(b.LastCollectionDate),
		LastPaymentDate:    formatOptionalDate(b.LastPaymentDate),
	}
}

// ToSupplierBalanceResponses converts a slice of balances
func ToSupplierBalanceResponses(balances []report.SupplierBalance) []SupplierBalanceResponse {
	responses := make([]SupplierBalanceResponse, len(balances))
	for i, b := range balances {
		responses[i] = ToSupplierBalanceResponse(b)
	}
	return responses
}

// ToSummaryResponse converts a domain Summary
func ToSummaryResponse(s *report.Summary) SummaryResponse {
	products := make([]ProductSummaryResponse, len(s.Products))
	for i, p := range s.Products {
		products[i] = ProductSummaryResponse{
			ProductID:       p.ProductID,
			ProductCode:     p.ProductCode,
			ProductName:     p.ProductName,
			Unit:            p.Unit,
			TotalQuantity:   p.TotalQuantity,
			TotalAmount:     p.TotalAmount,
			CollectionCount: p.CollectionCount,
		}
	}
	return SummaryResponse{
		From:            formatOptionalDate(s.Range.From),
		To:              formatOptionalDate(s.Range.To),
		TotalCollected:  s.Totals.TotalCollected,
		TotalPaid:       s.Totals.TotalPaid,
		Outstanding:     s.Outstanding,
		CollectionCount: s.Totals.CollectionCount,
		PaymentCount:    s.Totals.PaymentCount,
		Suppliers:       ToSupplierBalanceResponses(s.Suppliers),
		Products:        products,
		GeneratedAt:     s.GeneratedAt,
	}
}

// ToStatementResponse converts a domain Statement
func ToStatementResponse(s *report.Statement) StatementResponse {
	entries := make([]StatementEntryResponse, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = StatementEntryResponse{
			Date:           shared.FormatDate(e.Date),
			Kind:           string(e.Kind),
			ReferenceID:    e.ReferenceID,
			Description:    e.Description,
			Quantity:       e.Quantity,
			Unit:           e.Unit,
			Rate:           e.Rate,
			Debit:          e.Debit,
			Credit:         e.Credit,
			RunningBalance: e.RunningBalance,
		}
	}
	return StatementResponse{
		Supplier:       ToSupplierBalanceResponse(s.Supplier),
		From:           formatOptionalDate(s.Range.From),
		To:             formatOptionalDate(s.Range.To),
		OpeningBalance: s.OpeningBalance,
		Entries:        entries,
		TotalDebit:     s.TotalDebit,
		TotalCredit:    s.TotalCredit,
		ClosingBalance: s.ClosingBalance,
		GeneratedAt:    s.GeneratedAt,
	}
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := shared.FormatDate(*t)
	return &s
}
