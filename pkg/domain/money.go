package domain

import (
	"fmt"

	dErrors "medfund/pkg/domain-errors"
)

// Money is an amount in integer cents. Integer arithmetic keeps the
// raised-total invariant exact under concurrent increments; no floats
// anywhere in the funding path.
type Money int64

// ParseMoney validates an amount in cents from external input.
func ParseMoney(cents int64) (Money, error) {
	if cents <= 0 {
		return 0, dErrors.Newf(dErrors.CodeValidation, "amount must be positive, got %d", cents)
	}
	return Money(cents), nil
}

// Cents returns the raw cent value.
func (m Money) Cents() int64 { return int64(m) }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m > 0 }

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money { return m + other }

// GTE reports m >= other.
func (m Money) GTE(other Money) bool { return m >= other }

// String renders the amount as a decimal with two fraction digits.
func (m Money) String() string {
	cents := int64(m)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
