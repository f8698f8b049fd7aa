// Package core provides the expense domain types shared by every layer.
//
// This file contains amount parsing and validation. Amounts are exact
// decimals; rounding for display happens in the presentation layer only.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Decimal128 limits: every backend must hold what the document store can.
const (
	maxAmountDigits   = 34
	minAmountExponent = -6176
	maxAmountExponent = 6111
)

// ValidateAmount rejects zero and negative amounts and amounts that do not
// fit an IEEE 754 decimal128 exactly.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return NewValidationError("amount", "amount must be greater than 0")
	}
	if !fitsDecimal128(d) {
		return NewValidationError("amount", "amount is out of range or has more than 34 significant digits")
	}
	return nil
}

func fitsDecimal128(d decimal.Decimal) bool {
	digits := d.Coefficient().String()
	significant := strings.TrimRight(digits, "0")
	exp := int64(d.Exponent()) + int64(len(digits)-len(significant))
	n := int64(len(significant))
	if n > maxAmountDigits || exp < minAmountExponent {
		return false
	}
	// Larger exponents can be absorbed by padding the coefficient with zeros.
	if exp > maxAmountExponent {
		return n+exp-maxAmountExponent <= maxAmountDigits
	}
	return true
}

// ParseAmount parses a decimal amount from user input.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// returns a validation error for malformed, zero or negative values.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, validation error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, NewValidationError("amount", "amount is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("amount", "amount must be a number")
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// SumAmounts adds amounts exactly.
func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
