package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment aggregate.
type PaymentModel struct {
	AggregateModel
	SupplierID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	UserID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	PaymentDate     time.Time             `gorm:"type:date;not null;index"`
	Amount          decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaymentType     finance.PaymentType   `gorm:"type:varchar(20);not null;index"`
	PaymentMethod   finance.PaymentMethod `gorm:"type:varchar(20);not null;default:'cash'"`
	ReferenceNumber string                `gorm:"type:varchar(100)"`
	Notes           string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SupplierID:        m.SupplierID,
		UserID:            m.UserID,
		PaymentDate:       m.PaymentDate.UTC(),
		Amount:            m.Amount,
		PaymentType:       m.PaymentType,
		PaymentMethod:     m.PaymentMethod,
		ReferenceNumber:   m.ReferenceNumber,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.SupplierID = p.SupplierID
	m.UserID = p.UserID
	m.PaymentDate = p.PaymentDate
	m.Amount = p.Amount
	m.PaymentType = p.PaymentType
	m.PaymentMethod = p.PaymentMethod
	m.ReferenceNumber = p.ReferenceNumber
	m.Notes = p.Notes
}
