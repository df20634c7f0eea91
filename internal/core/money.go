// Package core provides the typed domain model shared by every tool
// handler: monetary conversion, budgeting entities, and update requests.
//
// This file contains conversion between the decimal display unit
// (dollars) and the integer minor unit (cents) used for all internal
// arithmetic and engine calls.
package core

import (
	"fmt"
	"math"
)

// MinorUnitScale is the number of minor units per major unit.
const MinorUnitScale = 100

// ToMinorUnits converts a decimal amount to integer cents, rounding
// half away from zero on the scaled value.
//
// Examples:
//
//	ToMinorUnits(10.505) -> 1051, nil
//	ToMinorUnits(10.504) -> 1050, nil
//	ToMinorUnits(-10.5)  -> -1050, nil
//
// NaN and infinite inputs are rejected rather than silently propagated.
func ToMinorUnits(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	scaled := amount * MinorUnitScale
	if scaled >= math.MaxInt64 || scaled <= math.MinInt64 {
		return 0, ErrInvalidAmount
	}
	return int64(math.Round(scaled)), nil
}

// ToMajorUnits converts integer cents back to a decimal amount.
// Minor units are exact integers so no rounding is involved.
func ToMajorUnits(minor int64) float64 {
	return float64(minor) / MinorUnitScale
}

// FormatAmount renders cents as a currency string for envelope values,
// e.g. 2550 -> "$25.50", -1050 -> "-$10.50".
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s$%d.%02d", sign, minor/MinorUnitScale, minor%MinorUnitScale)
}
