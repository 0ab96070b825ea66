package shared

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Decimal places used across the ledger
const (
	MoneyScale    int32 = 2
	QuantityScale int32 = 3
	RateScale     int32 = 4
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// TruncateDay drops the time of day, keeping the calendar date in UTC
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// RoundMoney rounds an amount to cents
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// LineTotal computes quantity * rate rounded to cents
func LineTotal(quantity, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(quantity.Mul(rate))
}
