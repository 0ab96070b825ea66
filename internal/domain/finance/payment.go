package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentType classifies why money was paid to a supplier
type PaymentType string

const (
	PaymentTypeAdvance    PaymentType = "advance"
	PaymentTypePartial    PaymentType = "partial"
	PaymentTypeFull       PaymentType = "full"
	PaymentTypeAdjustment PaymentType = "adjustment" // may be negative to correct earlier entries
)

// IsValid reports whether the type is known
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeAdvance, PaymentTypePartial, PaymentTypeFull, PaymentTypeAdjustment:
		return true
	}
	return false
}

// PaymentMethod is how the money moved
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid reports whether the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodMobileMoney, PaymentMethodCheque, PaymentMethodOther:
		return true
	}
	return false
}

// Payment records money paid to a supplier, reducing its balance
type Payment struct {
	shared.BaseAggregateRoot
	SupplierID      uuid.UUID
	UserID          uuid.UUID
	PaymentDate     time.Time
	Amount          decimal.Decimal
	PaymentType     PaymentType
	PaymentMethod   PaymentMethod
	ReferenceNumber string
	Notes           string
}

// NewPayment creates a payment
func NewPayment(
	supplierID, userID uuid.UUID,
	paymentDate time.Time,
	amount decimal.Decimal,
	paymentType PaymentType,
	method PaymentMethod,
) (*Payment, error) {
	if method == "" {
		method = PaymentMethodCash
	}
	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		UserID:            userID,
		PaymentDate:       truncateDate(paymentDate),
		Amount:            shared.RoundMoney(amount),
		PaymentType:       paymentType,
		PaymentMethod:     method,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// PaymentChange lists the fields a revision may touch; nil means unchanged
type PaymentChange struct {
	SupplierID      *uuid.UUID
	PaymentDate     *time.Time
	Amount          *decimal.Decimal
	PaymentType     *PaymentType
	PaymentMethod   *PaymentMethod
	ReferenceNumber *string
	Notes           *string
}

// Revise applies a change and re-validates the whole payment. On failure the
// payment is left as it was.
func (p *Payment) Revise(change PaymentChange) error {
	next := *p
	if change.SupplierID != nil {
		next.SupplierID = *change.SupplierID
	}
	if change.PaymentDate != nil {
		next.PaymentDate = truncateDate(*change.PaymentDate)
	}
	if change.Amount != nil {
		next.Amount = shared.RoundMoney(*change.Amount)
	}
	if change.PaymentType != nil {
		next.PaymentType = *change.PaymentType
	}
	if change.PaymentMethod != nil {
		next.PaymentMethod = *change.PaymentMethod
	}
	if change.ReferenceNumber != nil {
		next.ReferenceNumber = *change.ReferenceNumber
	}
	if change.Notes != nil {
		next.Notes = *change.Notes
	}
	if err := next.validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

func (p *Payment) validate() error {
	errs := shared.ValidationErrors{}
	if p.SupplierID == uuid.Nil {
		errs.Add("supplier_id", "is required")
	}
	if p.PaymentDate.IsZero() {
		errs.Add("payment_date", "is required")
	}
	if !p.PaymentType.IsValid() {
		errs.Add("payment_type", "must be one of advance, partial, full, adjustment")
	}
	if !p.PaymentMethod.IsValid() {
		errs.Add("payment_method", "must be one of cash, bank_transfer, mobile_money, cheque, other")
	}
	switch {
	case p.Amount.IsZero():
		errs.Add("amount", "must not be zero")
	case p.Amount.IsNegative() && p.PaymentType != PaymentTypeAdjustment:
		errs.Add("amount", "may only be negative for adjustments")
	}
	if len(p.ReferenceNumber) > 100 {
		errs.Add("reference_number", "must not exceed 100 characters")
	}
	return errs.Err()
}

func truncateDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return shared.TruncateDay(t)
}
