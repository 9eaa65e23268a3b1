// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between minor units and display amounts.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// ParseDecimalToCents converts a decimal string to minor units with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. The result is
// always positive. Signed values, zero and anything that is not a plain decimal
// number are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.344") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Round is half away from zero, which is half-up for positive values.
	cents := d.Shift(2).Round(0)
	if !cents.IsPositive() || cents.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// FormatCents renders minor units as a display amount with two fractional digits.
// Negative values keep their sign.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Display returns the amount as a two-decimal display string.
func (m Money) Display() string {
	return FormatCents(m.Cents)
}

// Float returns the display value as a float64 for presentation only.
// Use Cents for calculations.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}
