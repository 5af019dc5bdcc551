// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity is a line quantity or a fuel distance. Fractional distances are allowed.
type Quantity = decimal.Decimal

// TaxRate is a percentage, e.g. 21 for 21 %.
type TaxRate = decimal.Decimal

var hundred = decimal.NewFromInt(100)

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds half away from zero to two decimal places.
func Round2(m Money) Money {
	return m.Round(2)
}

// ParseLenient parses a free-text amount. Anything unparseable becomes zero.
// Installation costs are stored as text, so the pricer must tolerate junk.
func ParseLenient(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// TaxDivisor returns 1 + rate/100.
func TaxDivisor(rate TaxRate) decimal.Decimal {
	return decimal.NewFromInt(1).Add(rate.Div(hundred))
}

// Sum adds a slice of values.
func Sum(values []Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
