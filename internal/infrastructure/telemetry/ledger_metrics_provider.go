package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerMetricsProvider implements LedgerMetricsProvider with aggregate
// queries over the ledger tables.
type GormLedgerMetricsProvider struct {
	db *gorm.DB
}

// NewGormLedgerMetricsProvider creates a new GormLedgerMetricsProvider.
func NewGormLedgerMetricsProvider(db *gorm.DB) *GormLedgerMetricsProvider {
	return &GormLedgerMetricsProvider{db: db}
}

// ActiveSupplierCount returns the number of active suppliers
func (p *GormLedgerMetricsProvider) ActiveSupplierCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("suppliers").
		Where("deleted_at IS NULL AND is_active = ?", true).
		Count(&count).Error
	return count, err
}

// OutstandingBalance returns total collected minus total paid
func (p *GormLedgerMetricsProvider) OutstandingBalance(ctx context.Context) (decimal.Decimal, error) {
	var collected, paid decimal.Decimal
	err := p.db.WithContext(ctx).
		Table("collections").
		Select("COALESCE(SUM(total_amount), 0)").
		Where("deleted_at IS NULL").
		Scan(&collected).Error
	if err != nil {
		return decimal.Zero, err
	}

	err = p.db.WithContext(ctx).
		Table("payments").
		Select("COALESCE(SUM(amount), 0)").
		Where("deleted_at IS NULL").
		Scan(&paid).Error
	if err != nil {
		return decimal.Zero, err
	}

	return collected.Sub(paid), nil
}
