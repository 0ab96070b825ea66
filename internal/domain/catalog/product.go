package catalog

import (
	"strings"

	"github.com/ledger/backend/internal/domain/shared"
)

// Product is something suppliers deliver, priced through time-bounded rates
type Product struct {
	shared.BaseAggregateRoot
	Code        string
	Name        string
	Description string
	DefaultUnit string
	IsActive    bool
}

// NewProduct creates a new active product
func NewProduct(code, name, defaultUnit string) (*Product, error) {
	errs := shared.ValidationErrors{}
	validateProductCode(errs, code)
	validateProductName(errs, name)
	validateUnit(errs, "default_unit", defaultUnit)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(strings.TrimSpace(code)),
		Name:              strings.TrimSpace(name),
		DefaultUnit:       NormalizeUnit(defaultUnit),
		IsActive:          true,
	}, nil
}

// SetCode changes the product code
func (p *Product) SetCode(code string) error {
	errs := shared.ValidationErrors{}
	validateProductCode(errs, code)
	if err := errs.Err(); err != nil {
		return err
	}
	p.Code = strings.ToUpper(strings.TrimSpace(code))
	return nil
}

// Rename changes the product name
func (p *Product) Rename(name string) error {
	errs := shared.ValidationErrors{}
	validateProductName(errs, name)
	if err := errs.Err(); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	return nil
}

// SetDescription sets the description
func (p *Product) SetDescription(description string) error {
	if len(description) > 2000 {
		return shared.NewValidationError("description", "must not exceed 2000 characters")
	}
	p.Description = description
	return nil
}

// SetDefaultUnit changes the unit suggested for new collections
func (p *Product) SetDefaultUnit(unit string) error {
	errs := shared.ValidationErrors{}
	validateUnit(errs, "default_unit", unit)
	if err := errs.Err(); err != nil {
		return err
	}
	p.DefaultUnit = NormalizeUnit(unit)
	return nil
}

// Activate marks the product as active
func (p *Product) Activate() {
	p.IsActive = true
}

// Deactivate marks the product as inactive
func (p *Product) Deactivate() {
	p.IsActive = false
}

// NormalizeUnit lower-cases and trims a unit code so "KG " and "kg" match
func NormalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

func validateProductCode(errs shared.ValidationErrors, code string) {
	code = strings.TrimSpace(code)
	if code == "" {
		errs.Add("code", "is required")
		return
	}
	if len(code) > 50 {
		errs.Add("code", "must not exceed 50 characters")
		return
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			errs.Add("code", "may only contain letters, numbers, underscores and hyphens")
			return
		}
	}
}

func validateProductName(errs shared.ValidationErrors, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "is required")
		return
	}
	if len(name) > 200 {
		errs.Add("name", "must not exceed 200 characters")
	}
}

func validateUnit(errs shared.ValidationErrors, field, unit string) {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		errs.Add(field, "is required")
		return
	}
	if len(unit) > 20 {
		errs.Add(field, "must not exceed 20 characters")
	}
}
