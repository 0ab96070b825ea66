package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DateRange bounds a report by calendar day; nil ends are open
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Validate checks that From is not after To
func (r DateRange) Validate() error {
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return shared.NewValidationError("to", "must be on or after from")
	}
	return nil
}

// SupplierBalance is what a supplier has delivered against what it was paid
type SupplierBalance struct {
	SupplierID         uuid.UUID
	SupplierCode       string
	SupplierName       string
	Region             string
	TotalCollected     decimal.Decimal
	TotalPaid          decimal.Decimal
	Balance            decimal.Decimal
	CollectionCount    int64
	PaymentCount       int64
	LastCollectionDate *time.Time
	LastPaymentDate    *time.Time
}

// Settle derives Balance from the two totals
func (b *SupplierBalance) Settle() {
	b.Balance = b.TotalCollected.Sub(b.TotalPaid)
}

// ProductSummary aggregates collections of one product in one unit
type ProductSummary struct {
	ProductID       uuid.UUID
	ProductCode     string
	ProductName     string
	Unit            string
	TotalQuantity   decimal.Decimal
	TotalAmount     decimal.Decimal
	CollectionCount int64
}

// Totals are ledger-wide sums for a range
type Totals struct {
	TotalCollected  decimal.Decimal
	TotalPaid       decimal.Decimal
	CollectionCount int64
	PaymentCount    int64
}

// Summary is the ledger overview for a range
type Summary struct {
	Range       DateRange
	Totals      Totals
	Outstanding decimal.Decimal
	Suppliers   []SupplierBalance
	Products    []ProductSummary
	GeneratedAt time.Time
}

// NewSummary assembles a summary and derives the outstanding amount
func NewSummary(r DateRange, totals Totals, suppliers []SupplierBalance, products []ProductSummary) *Summary {
	return &Summary{
		Range:       r,
		Totals:      totals,
		Outstanding: totals.TotalCollected.Sub(totals.TotalPaid),
		Suppliers:   suppliers,
		Products:    products,
		GeneratedAt: time.Now(),
	}
}

// EntryKind tells collections and payments apart on a statement
type EntryKind string

const (
	EntryCollection EntryKind = "collection"
	EntryPayment    EntryKind = "payment"
)

// StatementEntry is one line on a supplier statement. Collections increase
// the balance (Debit); payments decrease it (Credit).
type StatementEntry struct {
	Date           time.Time
	Kind           EntryKind
	ReferenceID    uuid.UUID
	Description    string
	Quantity       decimal.Decimal
	Unit           string
	Rate           decimal.Decimal
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	RunningBalance decimal.Decimal
	CreatedAt      time.Time
}

// Statement lists a supplier's ledger entries with a running balance
type Statement struct {
	Supplier       SupplierBalance
	Range          DateRange
	OpeningBalance decimal.Decimal
	Entries        []StatementEntry
	TotalDebit     decimal.Decimal
	TotalCredit    decimal.Decimal
	ClosingBalance decimal.Decimal
	GeneratedAt    time.Time
}

// BuildStatement orders entries by day then creation time and carries the
// running balance forward from opening.
func BuildStatement(supplier SupplierBalance, r DateRange, opening decimal.Decimal, entries []StatementEntry) *Statement {
	sorted := make([]StatementEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	running := opening
	debit, credit := decimal.Zero, decimal.Zero
	for i := range sorted {
		running = running.Add(sorted[i].Debit).Sub(sorted[i].Credit)
		sorted[i].RunningBalance = running
		debit = debit.Add(sorted[i].Debit)
		credit = credit.Add(sorted[i].Credit)
	}

	return &Statement{
		Supplier:       supplier,
		Range:          r,
		OpeningBalance: opening,
		Entries:        sorted,
		TotalDebit:     debit,
		TotalCredit:    credit,
		ClosingBalance: running,
		GeneratedAt:    time.Now(),
	}
}

// Repository runs the ledger aggregation queries
type Repository interface {
	// Totals sums collections and payments in the range
	Totals(ctx context.Context, r DateRange) (Totals, error)

	// SupplierBalances returns one row per live supplier, highest balance first
	SupplierBalances(ctx context.Context, r DateRange) ([]SupplierBalance, error)

	// SupplierBalance returns the balance of a single supplier
	SupplierBalance(ctx context.Context, supplierID uuid.UUID, r DateRange) (*SupplierBalance, error)

	// ProductSummaries groups collections by product and unit
	ProductSummaries(ctx context.Context, r DateRange) ([]ProductSummary, error)

	// StatementEntries lists a supplier's collections and payments in the range
	StatementEntries(ctx context.Context, supplierID uuid.UUID, r DateRange) ([]StatementEntry, error)

	// OpeningBalance is collected minus paid strictly before day
	OpeningBalance(ctx context.Context, supplierID uuid.UUID, before time.Time) (decimal.Decimal, error)
}
