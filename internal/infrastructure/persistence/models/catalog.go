package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate.
type ProductModel struct {
	AggregateModel
	Code        string `gorm:"type:varchar(50);not null;uniqueIndex:idx_products_code,where:deleted_at IS NULL"`
	Name        string `gorm:"type:varchar(200);not null;index"`
	Description string `gorm:"type:text"`
	DefaultUnit string `gorm:"type:varchar(20);not null"`
	IsActive    bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		DefaultUnit:       m.DefaultUnit,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Description = p.Description
	m.DefaultUnit = p.DefaultUnit
	m.IsActive = p.IsActive
}

// RateModel is the persistence model for the Rate aggregate.
type RateModel struct {
	AggregateModel
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_rates_lookup,priority:1"`
	Unit          string          `gorm:"type:varchar(20);not null;index:idx_rates_lookup,priority:2"`
	Rate          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EffectiveFrom time.Time       `gorm:"type:date;not null;index:idx_rates_lookup,priority:3"`
	EffectiveTo   *time.Time      `gorm:"type:date"`
	IsActive      bool            `gorm:"not null;default:true"`
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RateModel) TableName() string {
	return "rates"
}

// ToDomain converts the persistence model to a domain Rate entity.
func (m *RateModel) ToDomain() *catalog.Rate {
	return &catalog.Rate{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ProductID:         m.ProductID,
		Unit:              m.Unit,
		Rate:              m.Rate,
		EffectiveFrom:     m.EffectiveFrom.UTC(),
		EffectiveTo:       utcPtr(m.EffectiveTo),
		IsActive:          m.IsActive,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Rate entity.
func (m *RateModel) FromDomain(r *catalog.Rate) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.ProductID = r.ProductID
	m.Unit = r.Unit
	m.Rate = r.Rate
	m.EffectiveFrom = r.EffectiveFrom
	m.EffectiveTo = r.EffectiveTo
	m.IsActive = r.IsActive
	m.Notes = r.Notes
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
