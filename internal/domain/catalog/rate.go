package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrNoEffectiveRate is returned when no active rate covers a product, unit and date
var ErrNoEffectiveRate = shared.NewDomainError("NO_EFFECTIVE_RATE", "No active rate is effective for this product, unit and date")

// ErrRateOverlap is returned when two active rates for the same product and
// unit would cover the same day
var ErrRateOverlap = shared.NewDomainError("RATE_OVERLAP", "Another active rate for this product and unit covers part of the same period")

// Rate is the price per unit paid for a product during a period.
// A nil EffectiveTo means the rate is open-ended.
type Rate struct {
	shared.BaseAggregateRoot
	ProductID     uuid.UUID
	Unit          string
	Rate          decimal.Decimal
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	IsActive      bool
	Notes         string
}

// NewRate creates a new active rate
func NewRate(productID uuid.UUID, unit string, rate decimal.Decimal, from time.Time, to *time.Time) (*Rate, error) {
	errs := shared.ValidationErrors{}
	if productID == uuid.Nil {
		errs.Add("product_id", "is required")
	}
	validateUnit(errs, "unit", unit)
	validateRateValue(errs, rate)
	validatePeriod(errs, from, to)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return &Rate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Unit:              NormalizeUnit(unit),
		Rate:              rate.Round(shared.RateScale),
		EffectiveFrom:     shared.TruncateDay(from),
		EffectiveTo:       truncatePtr(to),
		IsActive:          true,
	}, nil
}

// SetUnit changes the unit the rate applies to
func (r *Rate) SetUnit(unit string) error {
	errs := shared.ValidationErrors{}
	validateUnit(errs, "unit", unit)
	if err := errs.Err(); err != nil {
		return err
	}
	r.Unit = NormalizeUnit(unit)
	return nil
}

// SetRate changes the price per unit
func (r *Rate) SetRate(rate decimal.Decimal) error {
	errs := shared.ValidationErrors{}
	validateRateValue(errs, rate)
	if err := errs.Err(); err != nil {
		return err
	}
	r.Rate = rate.Round(shared.RateScale)
	return nil
}

// SetPeriod changes the effective window
func (r *Rate) SetPeriod(from time.Time, to *time.Time) error {
	errs := shared.ValidationErrors{}
	validatePeriod(errs, from, to)
	if err := errs.Err(); err != nil {
		return err
	}
	r.EffectiveFrom = shared.TruncateDay(from)
	r.EffectiveTo = truncatePtr(to)
	return nil
}

// SetNotes sets free-form notes
func (r *Rate) SetNotes(notes string) {
	r.Notes = notes
}

// Activate marks the rate as usable for lookups
func (r *Rate) Activate() {
	r.IsActive = true
}

// Deactivate removes the rate from lookups without deleting it
func (r *Rate) Deactivate() {
	r.IsActive = false
}

// Covers reports whether the rate is active and effective on the given day
func (r *Rate) Covers(day time.Time) bool {
	if !r.IsActive {
		return false
	}
	day = shared.TruncateDay(day)
	if day.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveTo == nil || !day.After(*r.EffectiveTo)
}

// Overlaps reports whether two active rates for the same product and unit
// share at least one day.
func (r *Rate) Overlaps(other *Rate) bool {
	if r.ID == other.ID || !r.IsActive || !other.IsActive {
		return false
	}
	if r.ProductID != other.ProductID || r.Unit != other.Unit {
		return false
	}
	return PeriodsOverlap(r.EffectiveFrom, r.EffectiveTo, other.EffectiveFrom, other.EffectiveTo)
}

// PeriodsOverlap reports whether two inclusive day ranges intersect.
// A nil end means the range never closes.
func PeriodsOverlap(aFrom time.Time, aTo *time.Time, bFrom time.Time, bTo *time.Time) bool {
	if aTo != nil && aTo.Before(bFrom) {
		return false
	}
	if bTo != nil && bTo.Before(aFrom) {
		return false
	}
	return true
}

func validateRateValue(errs shared.ValidationErrors, rate decimal.Decimal) {
	if !rate.IsPositive() {
		errs.Add("rate", "must be greater than zero")
	}
}

func validatePeriod(errs shared.ValidationErrors, from time.Time, to *time.Time) {
	if from.IsZero() {
		errs.Add("effective_from", "is required")
		return
	}
	if to != nil && shared.TruncateDay(*to).Before(shared.TruncateDay(from)) {
		errs.Add("effective_to", "must be on or after effective_from")
	}
}

func truncatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := shared.TruncateDay(*t)
	return &d
}
