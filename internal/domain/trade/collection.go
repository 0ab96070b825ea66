package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AppliedRate is the rate snapshot copied onto a collection
type AppliedRate struct {
	RateID uuid.UUID
	Value  decimal.Decimal
}

// RateResolver finds the rate effective for a product, unit and day
type RateResolver func(productID uuid.UUID, unit string, day time.Time) (AppliedRate, error)

// Collection records a quantity of product received from a supplier on a day.
// TotalAmount always equals Quantity * RateApplied rounded to cents.
type Collection struct {
	shared.BaseAggregateRoot
	SupplierID     uuid.UUID
	ProductID      uuid.UUID
	RateID         uuid.UUID
	UserID         uuid.UUID
	CollectionDate time.Time
	Quantity       decimal.Decimal
	Unit           string
	RateApplied    decimal.Decimal
	TotalAmount    decimal.Decimal
	Notes          string
}

// NewCollection creates a collection and prices it through resolve
func NewCollection(
	supplierID, productID, userID uuid.UUID,
	collectionDate time.Time,
	quantity decimal.Decimal,
	unit string,
	resolve RateResolver,
) (*Collection, error) {
	errs := shared.ValidationErrors{}
	if supplierID == uuid.Nil {
		errs.Add("supplier_id", "is required")
	}
	if productID == uuid.Nil {
		errs.Add("product_id", "is required")
	}
	if collectionDate.IsZero() {
		errs.Add("collection_date", "is required")
	}
	validateQuantity(errs, quantity)
	validateUnit(errs, unit)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	c := &Collection{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		ProductID:         productID,
		UserID:            userID,
		CollectionDate:    shared.TruncateDay(collectionDate),
		Quantity:          quantity.Round(shared.QuantityScale),
		Unit:              normalizeUnit(unit),
	}
	if err := c.applyRate(resolve); err != nil {
		return nil, err
	}
	return c, nil
}

// CollectionChange lists the fields a revision may touch; nil means unchanged
type CollectionChange struct {
	SupplierID     *uuid.UUID
	ProductID      *uuid.UUID
	CollectionDate *time.Time
	Quantity       *decimal.Decimal
	Unit           *string
	Notes          *string
}

// Revise applies a change. The rate is re-resolved when the product, unit or
// date move; otherwise the copied rate is kept and only the total is recomputed.
func (c *Collection) Revise(change CollectionChange, resolve RateResolver) error {
	errs := shared.ValidationErrors{}
	if change.SupplierID != nil && *change.SupplierID == uuid.Nil {
		errs.Add("supplier_id", "is required")
	}
	if change.ProductID != nil && *change.ProductID == uuid.Nil {
		errs.Add("product_id", "is required")
	}
	if change.CollectionDate != nil && change.CollectionDate.IsZero() {
		errs.Add("collection_date", "is required")
	}
	if change.Quantity != nil {
		validateQuantity(errs, *change.Quantity)
	}
	if change.Unit != nil {
		validateUnit(errs, *change.Unit)
	}
	if err := errs.Err(); err != nil {
		return err
	}

	repriced := false
	if change.ProductID != nil && *change.ProductID != c.ProductID {
		c.ProductID = *change.ProductID
		repriced = true
	}
	if change.CollectionDate != nil {
		d := shared.TruncateDay(*change.CollectionDate)
		if !d.Equal(c.CollectionDate) {
			c.CollectionDate = d
			repriced = true
		}
	}
	if change.Unit != nil {
		u := normalizeUnit(*change.Unit)
		if u != c.Unit {
			c.Unit = u
			repriced = true
		}
	}
	if change.SupplierID != nil {
		c.SupplierID = *change.SupplierID
	}
	if change.Quantity != nil {
		c.Quantity = change.Quantity.Round(shared.QuantityScale)
	}
	if change.Notes != nil {
		c.Notes = *change.Notes
	}

	if repriced {
		return c.applyRate(resolve)
	}
	c.recalculate()
	return nil
}

// TotalMatches reports whether the stored total agrees with quantity * rate
func (c *Collection) TotalMatches() bool {
	return c.TotalAmount.Equal(shared.LineTotal(c.Quantity, c.RateApplied))
}

func (c *Collection) applyRate(resolve RateResolver) error {
	applied, err := resolve(c.ProductID, c.Unit, c.CollectionDate)
	if err != nil {
		return err
	}
	c.RateID = applied.RateID
	c.RateApplied = applied.Value
	c.recalculate()
	return nil
}

func (c *Collection) recalculate() {
	c.TotalAmount = shared.LineTotal(c.Quantity, c.RateApplied)
}

func validateQuantity(errs shared.ValidationErrors, quantity decimal.Decimal) {
	if !quantity.IsPositive() {
		errs.Add("quantity", "must be greater than zero")
	}
}

func validateUnit(errs shared.ValidationErrors, unit string) {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		errs.Add("unit", "is required")
		return
	}
	if len(unit) > 20 {
		errs.Add("unit", "must not exceed 20 characters")
	}
}

func normalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}
