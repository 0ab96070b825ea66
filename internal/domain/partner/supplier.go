package partner

import (
	"regexp"
	"strings"

	"github.com/ledger/backend/internal/domain/shared"
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Supplier is someone who delivers products that are paid for later.
// Its running balance is derived from collections and payments, never stored.
type Supplier struct {
	shared.BaseAggregateRoot
	Code          string
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	Region        string
	Notes         string
	IsActive      bool
}

// NewSupplier creates a new active supplier
func NewSupplier(code, name string) (*Supplier, error) {
	errs := shared.ValidationErrors{}
	validateSupplierCode(errs, code)
	validateSupplierName(errs, name)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(strings.TrimSpace(code)),
		Name:              strings.TrimSpace(name),
		IsActive:          true,
	}, nil
}

// SetCode changes the supplier code
func (s *Supplier) SetCode(code string) error {
	errs := shared.ValidationErrors{}
	validateSupplierCode(errs, code)
	if err := errs.Err(); err != nil {
		return err
	}
	s.Code = strings.ToUpper(strings.TrimSpace(code))
	return nil
}

// Rename changes the supplier name
func (s *Supplier) Rename(name string) error {
	errs := shared.ValidationErrors{}
	validateSupplierName(errs, name)
	if err := errs.Err(); err != nil {
		return err
	}
	s.Name = strings.TrimSpace(name)
	return nil
}

// SetContact sets the contact person, phone and email
func (s *Supplier) SetContact(person, phone, email string) error {
	errs := shared.ValidationErrors{}
	if len(person) > 100 {
		errs.Add("contact_person", "must not exceed 100 characters")
	}
	if phone != "" {
		if len(phone) > 50 {
			errs.Add("phone", "must not exceed 50 characters")
		} else if !phonePattern.MatchString(phone) {
			errs.Add("phone", "is not a valid phone number")
		}
	}
	if email != "" {
		if len(email) > 200 {
			errs.Add("email", "must not exceed 200 characters")
		} else if !emailPattern.MatchString(email) {
			errs.Add("email", "must be a valid email address")
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}

	s.ContactPerson = person
	s.Phone = phone
	s.Email = strings.ToLower(email)
	return nil
}

// SetLocation sets the address and collection region
func (s *Supplier) SetLocation(address, region string) error {
	errs := shared.ValidationErrors{}
	if len(address) > 500 {
		errs.Add("address", "must not exceed 500 characters")
	}
	if len(region) > 100 {
		errs.Add("region", "must not exceed 100 characters")
	}
	if err := errs.Err(); err != nil {
		return err
	}

	s.Address = address
	s.Region = region
	return nil
}

// SetNotes sets free-form notes
func (s *Supplier) SetNotes(notes string) {
	s.Notes = notes
}

// Activate marks the supplier as active
func (s *Supplier) Activate() {
	s.IsActive = true
}

// Deactivate marks the supplier as inactive. Inactive suppliers keep their
// history but accept no new collections.
func (s *Supplier) Deactivate() {
	s.IsActive = false
}

func validateSupplierCode(errs shared.ValidationErrors, code string) {
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

func validateSupplierName(errs shared.ValidationErrors, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "is required")
		return
	}
	if len(name) > 200 {
		errs.Add("name", "must not exceed 200 characters")
	}
}
