package models

import (
	"github.com/ledger/backend/internal/domain/partner"
)

// SupplierModel is the persistence model for the Supplier aggregate.
type SupplierModel struct {
	AggregateModel
	Code          string `gorm:"type:varchar(50);not null;uniqueIndex:idx_suppliers_code,where:deleted_at IS NULL"`
	Name          string `gorm:"type:varchar(200);not null;index"`
	ContactPerson string `gorm:"type:varchar(100)"`
	Phone         string `gorm:"type:varchar(50)"`
	Email         string `gorm:"type:varchar(200)"`
	Address       string `gorm:"type:text"`
	Region        string `gorm:"type:varchar(100);index"`
	Notes         string `gorm:"type:text"`
	IsActive      bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		ContactPerson:     m.ContactPerson,
		Phone:             m.Phone,
		Email:             m.Email,
		Address:           m.Address,
		Region:            m.Region,
		Notes:             m.Notes,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Code = s.Code
	m.Name = s.Name
	m.ContactPerson = s.ContactPerson
	m.Phone = s.Phone
	m.Email = s.Email
	m.Address = s.Address
	m.Region = s.Region
	m.Notes = s.Notes
	m.IsActive = s.IsActive
}
