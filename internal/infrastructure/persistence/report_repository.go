package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/report"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository runs the ledger aggregation queries using GORM.
// Aggregates are computed per table and merged in Go so the same queries
// run on PostgreSQL and SQLite.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// sqlDay scans a calendar date from drivers that return time.Time, string or []byte.
type sqlDay struct {
	Time *time.Time
}

// GormDataType tells gorm the column holds a date
func (sqlDay) GormDataType() string {
	return "date"
}

// Scan implements sql.Scanner
func (d *sqlDay) Scan(value any) error {
	var raw string
	switch v := value.(type) {
	case nil:
		d.Time = nil
		return nil
	case time.Time:
		t := shared.TruncateDay(v)
		d.Time = &t
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported date value %T", value)
	}
	if len(raw) < len(shared.DateLayout) {
		return fmt.Errorf("invalid date value %q", raw)
	}
	t, err := shared.ParseDate(raw[:len(shared.DateLayout)])
	if err != nil {
		return err
	}
	d.Time = &t
	return nil
}

type sumRow struct {
	SupplierID uuid.UUID
	SumTotal   decimal.NullDecimal
	RowCount   int64
	LastDate   sqlDay
}

type totalRow struct {
	SumTotal decimal.NullDecimal
	RowCount int64
}

func (r *GormReportRepository) conn(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db)
}

func (r *GormReportRepository) sumCollections(ctx context.Context, rng report.DateRange, supplierID *uuid.UUID) (map[uuid.UUID]sumRow, error) {
	return r.sumBy(ctx, &models.CollectionModel{}, "total_amount", "collection_date", rng, supplierID)
}

func (r *GormReportRepository) sumPayments(ctx context.Context, rng report.DateRange, supplierID *uuid.UUID) (map[uuid.UUID]sumRow, error) {
	return r.sumBy(ctx, &models.PaymentModel{}, "amount", "payment_date", rng, supplierID)
}

// sumBy groups model rows by supplier_id inside the range.
func (r *GormReportRepository) sumBy(ctx context.Context, model any, amountCol, dateCol string, rng report.DateRange, supplierID *uuid.UUID) (map[uuid.UUID]sumRow, error) {
	query := r.conn(ctx).Model(model).
		Select(fmt.Sprintf("supplier_id, SUM(%s) AS sum_total, COUNT(*) AS row_count, MAX(%s) AS last_date", amountCol, dateCol))
	query = applyRange(query, dateCol, rng)
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}

	var rows []sumRow
	if err := query.Group("supplier_id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", dateCol, err)
	}
	out := make(map[uuid.UUID]sumRow, len(rows))
	for _, row := range rows {
		out[row.SupplierID] = row
	}
	return out, nil
}

func applyRange(query *gorm.DB, column string, rng report.DateRange) *gorm.DB {
	if rng.From != nil {
		query = query.Where(column+" >= ?", shared.TruncateDay(*rng.From))
	}
	if rng.To != nil {
		query = query.Where(column+" <= ?", shared.TruncateDay(*rng.To))
	}
	return query
}

// Totals sums collections and payments in the range
func (r *GormReportRepository) Totals(ctx context.Context, rng report.DateRange) (report.Totals, error) {
	var col, pay totalRow

	q := applyRange(r.conn(ctx).Model(&models.CollectionModel{}), "collection_date", rng)
	if err := q.Select("SUM(total_amount) AS sum_total, COUNT(*) AS row_count").Scan(&col).Error; err != nil {
		return report.Totals{}, fmt.Errorf("sum collections: %w", err)
	}
	q = applyRange(r.conn(ctx).Model(&models.PaymentModel{}), "payment_date", rng)
	if err := q.Select("SUM(amount) AS sum_total, COUNT(*) AS row_count").Scan(&pay).Error; err != nil {
		return report.Totals{}, fmt.Errorf("sum payments: %w", err)
	}

	return report.Totals{
		TotalCollected:  orZero(col.SumTotal).Round(shared.MoneyScale),
		TotalPaid:       orZero(pay.SumTotal).Round(shared.MoneyScale),
		CollectionCount: col.RowCount,
		PaymentCount:    pay.RowCount,
	}, nil
}

// SupplierBalances returns one row per live supplier, highest balance first
func (r *GormReportRepository) SupplierBalances(ctx context.Context, rng report.DateRange) ([]report.SupplierBalance, error) {
	var suppliers []models.SupplierModel
	if err := r.conn(ctx).Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	collected, err := r.sumCollections(ctx, rng, nil)
	if err != nil {
		return nil, err
	}
	paid, err := r.sumPayments(ctx, rng, nil)
	if err != nil {
		return nil, err
	}

	out := make([]report.SupplierBalance, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, mergeBalance(&suppliers[i], collected[suppliers[i].ID], paid[suppliers[i].ID]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Balance.GreaterThan(out[j].Balance)
	})
	return out, nil
}

// SupplierBalance returns the balance of a single supplier
func (r *GormReportRepository) SupplierBalance(ctx context.Context, supplierID uuid.UUID, rng report.DateRange) (*report.SupplierBalance, error) {
	var supplier models.SupplierModel
	if err := r.conn(ctx).Where("id = ?", supplierID).First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("load supplier: %w", err)
	}
	collected, err := r.sumCollections(ctx, rng, &supplierID)
	if err != nil {
		return nil, err
	}
	paid, err := r.sumPayments(ctx, rng, &supplierID)
	if err != nil {
		return nil, err
	}
	balance := mergeBalance(&supplier, collected[supplierID], paid[supplierID])
	return &balance, nil
}

func mergeBalance(s *models.SupplierModel, collected, paid sumRow) report.SupplierBalance {
	b := report.SupplierBalance{
		SupplierID:         s.ID,
		SupplierCode:       s.Code,
		SupplierName:       s.Name,
		Region:             s.Region,
		TotalCollected:     orZero(collected.SumTotal).Round(shared.MoneyScale),
		TotalPaid:          orZero(paid.SumTotal).Round(shared.MoneyScale),
		CollectionCount:    collected.RowCount,
		PaymentCount:       paid.RowCount,
		LastCollectionDate: collected.LastDate.Time,
		LastPaymentDate:    paid.LastDate.Time,
	}
	b.Settle()
	return b
}

// ProductSummaries groups collections by product and unit
func (r *GormReportRepository) ProductSummaries(ctx context.Context, rng report.DateRange) ([]report.ProductSummary, error) {
	type productRow struct {
		ProductID   uuid.UUID
		Unit        string
		SumQuantity decimal.NullDecimal
		SumTotal    decimal.NullDecimal
		RowCount    int64
	}
	var rows []productRow
	q := applyRange(r.conn(ctx).Model(&models.CollectionModel{}), "collection_date", rng)
	err := q.Select("product_id, unit, SUM(quantity) AS sum_quantity, SUM(total_amount) AS sum_total, COUNT(*) AS row_count").
		Group("product_id, unit").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate products: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	products, err := r.productsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]report.ProductSummary, 0, len(rows))
	for _, row := range rows {
		p := products[row.ProductID]
		out = append(out, report.ProductSummary{
			ProductID:       row.ProductID,
			ProductCode:     p.Code,
			ProductName:     p.Name,
			Unit:            row.Unit,
			TotalQuantity:   orZero(row.SumQuantity).Round(shared.QuantityScale),
			TotalAmount:     orZero(row.SumTotal).Round(shared.MoneyScale),
			CollectionCount: row.RowCount,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProductName != out[j].ProductName {
			return out[i].ProductName < out[j].ProductName
		}
		return out[i].Unit < out[j].Unit
	})
	return out, nil
}

// productsByID loads products including soft-deleted ones so historic
// collections keep their labels.
func (r *GormReportRepository) productsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ProductModel, error) {
	out := make(map[uuid.UUID]models.ProductModel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.ProductModel
	if err := r.conn(ctx).Unscoped().Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// StatementEntries lists a supplier's collections and payments in the range
func (r *GormReportRepository) StatementEntries(ctx context.Context, supplierID uuid.UUID, rng report.DateRange) ([]report.StatementEntry, error) {
	var collections []models.CollectionModel
	q := applyRange(r.conn(ctx).Where("supplier_id = ?", supplierID), "collection_date", rng)
	if err := q.Order("collection_date ASC, created_at ASC").Find(&collections).Error; err != nil {
		return nil, fmt.Errorf("list statement collections: %w", err)
	}

	var payments []models.PaymentModel
	q = applyRange(r.conn(ctx).Where("supplier_id = ?", supplierID), "payment_date", rng)
	if err := q.Order("payment_date ASC, created_at ASC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("list statement payments: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(collections))
	for _, c := range collections {
		ids = append(ids, c.ProductID)
	}
	products, err := r.productsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]report.StatementEntry, 0, len(collections)+len(payments))
	for _, c := range collections {
		entries = append(entries, report.StatementEntry{
			Date:        shared.TruncateDay(c.CollectionDate),
			Kind:        report.EntryCollection,
			ReferenceID: c.ID,
			Description: collectionDescription(products[c.ProductID], c),
			Quantity:    c.Quantity,
			Unit:        c.Unit,
			Rate:        c.RateApplied,
			Debit:       c.TotalAmount,
			Credit:      decimal.Zero,
			CreatedAt:   c.CreatedAt,
		})
	}
	for _, p := range payments {
		entries = append(entries, report.StatementEntry{
			Date:        shared.TruncateDay(p.PaymentDate),
			Kind:        report.EntryPayment,
			ReferenceID: p.ID,
			Description: paymentDescription(p),
			Quantity:    decimal.Zero,
			Rate:        decimal.Zero,
			Debit:       decimal.Zero,
			Credit:      p.Amount,
			CreatedAt:   p.CreatedAt,
		})
	}
	return entries, nil
}

func collectionDescription(p models.ProductModel, c models.CollectionModel) string {
	name := p.Name
	if name == "" {
		name = "Collection"
	}
	return fmt.Sprintf("%s %s %s @ %s", name, c.Quantity.StringFixed(shared.QuantityScale), c.Unit, c.RateApplied.StringFixed(shared.RateScale))
}

func paymentDescription(p models.PaymentModel) string {
	parts := []string{"Payment", string(p.PaymentType), "via", strings.ReplaceAll(string(p.PaymentMethod), "_", " ")}
	if p.ReferenceNumber != "" {
		parts = append(parts, "ref "+p.ReferenceNumber)
	}
	return strings.Join(parts, " ")
}

// OpeningBalance is collected minus paid strictly before day
func (r *GormReportRepository) OpeningBalance(ctx context.Context, supplierID uuid.UUID, before time.Time) (decimal.Decimal, error) {
	day := shared.TruncateDay(before)
	var collected, paid totalRow

	err := r.conn(ctx).Model(&models.CollectionModel{}).
		Select("SUM(total_amount) AS sum_total, COUNT(*) AS row_count").
		Where("supplier_id = ? AND collection_date < ?", supplierID, day).
		Scan(&collected).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("opening collections: %w", err)
	}
	err = r.conn(ctx).Model(&models.PaymentModel{}).
		Select("SUM(amount) AS sum_total, COUNT(*) AS row_count").
		Where("supplier_id = ? AND payment_date < ?", supplierID, day).
		Scan(&paid).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("opening payments: %w", err)
	}
	return orZero(collected.SumTotal).Sub(orZero(paid.SumTotal)).Round(shared.MoneyScale), nil
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}

// Ensure GormReportRepository implements report.Repository
var _ report.Repository = (*GormReportRepository)(nil)
