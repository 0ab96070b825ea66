package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CollectionModel is the persistence model for the Collection aggregate.
type CollectionModel struct {
	AggregateModel
	SupplierID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	RateID         uuid.UUID       `gorm:"type:uuid;not null"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CollectionDate time.Time       `gorm:"type:date;not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Unit           string          `gorm:"type:varchar(20);not null"`
	RateApplied    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Notes          string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CollectionModel) TableName() string {
	return "collections"
}

// ToDomain converts the persistence model to a domain Collection entity.
func (m *CollectionModel) ToDomain() *trade.Collection {
	return &trade.Collection{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SupplierID:        m.SupplierID,
		ProductID:         m.ProductID,
		RateID:            m.RateID,
		UserID:            m.UserID,
		CollectionDate:    m.CollectionDate.UTC(),
		Quantity:          m.Quantity,
		Unit:              m.Unit,
		RateApplied:       m.RateApplied,
		TotalAmount:       m.TotalAmount,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Collection entity.
func (m *CollectionModel) FromDomain(c *trade.Collection) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.SupplierID = c.SupplierID
	m.ProductID = c.ProductID
	m.RateID = c.RateID
	m.UserID = c.UserID
	m.CollectionDate = c.CollectionDate
	m.Quantity = c.Quantity
	m.Unit = c.Unit
	m.RateApplied = c.RateApplied
	m.TotalAmount = c.TotalAmount
	m.Notes = c.Notes
}
