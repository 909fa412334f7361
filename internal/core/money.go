// Package core provides the income domain model and money conversion.
//
// Amounts are decimals in the API and integer minor units (cents) in the
// store, which keeps database sums exact.
package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

const minorUnitExponent = 2

var ErrAmountOverflow = errors.New("amount out of range")

// ValidateAmount reports whether d is a storable income amount: non-negative
// and with at most two fractional digits.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegativeAmount
	}
	if !d.Equal(d.Truncate(minorUnitExponent)) {
		return ErrAmountPrecision
	}
	if _, err := ToMinorUnits(d); err != nil {
		return err
	}
	return nil
}

// ToMinorUnits converts a decimal amount to cents.
//
// Examples:
//
//	ToMinorUnits(12.34) -> 1234
//	ToMinorUnits(12.3)  -> 1230
func ToMinorUnits(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(minorUnitExponent)
	if !shifted.IsInteger() {
		return 0, ErrAmountPrecision
	}
	if shifted.BigInt().IsInt64() {
		return shifted.IntPart(), nil
	}
	return 0, ErrAmountOverflow
}

// FromMinorUnits converts cents back to a decimal amount.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -minorUnitExponent)
}
