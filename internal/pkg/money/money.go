// Package money converts between blockchain minor-unit integer amounts
// (wei, satoshi) and exact decimal values, and formats decimals for display.
//
// All arithmetic is performed on decimal values; floating-point is never
// involved, so conversions are exact for any representable minor-unit
// integer regardless of the chain's unit exponent.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// displayPrecision is the number of fractional digits rendered before
// trailing zeros are trimmed for display.
const displayPrecision = 8

// FromMinorUnits parses a minor-unit integer amount (e.g. "1500000000000000000"
// wei) and scales it down by the chain's unit exponent (e.g. 18 for
// wei -> ETH, 8 for satoshi -> BTC).
//
// Returns an error if raw is not a valid integer or decimal string.
func FromMinorUnits(raw string, exponent int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return d.Shift(-exponent), nil
}

// FromMinorUnitsInt scales an already-parsed minor-unit integer down by the
// chain's unit exponent.
func FromMinorUnitsInt(raw int64, exponent int32) decimal.Decimal {
	return decimal.New(raw, -exponent)
}

// ToMinorUnits scales a decimal amount back up to its minor-unit integer
// representation, truncating any sub-minor-unit remainder.
func ToMinorUnits(d decimal.Decimal, exponent int32) string {
	return d.Shift(exponent).Truncate(0).String()
}

// Format renders a decimal amount with up to 8 fractional digits, trimming
// trailing zeros and a dangling decimal point. A zero amount renders as "0".
func Format(d decimal.Decimal) string {
	s := d.StringFixed(displayPrecision)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
