// Package types provides common value types used across Folio.
package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal quantity used for money, quantities and rates.
// Arithmetic is exact; rounding only happens where Round2 is called.
//
// Amounts are lenient on input: a JSON number or numeric string is parsed,
// true becomes 1, and anything else (null, garbage text, objects) becomes 0.
// They always marshal as a bare JSON number.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero Amount.
var Zero = Amount{}

var hundred = decimal.NewFromInt(100)

// NewAmount creates an Amount from a float64.
func NewAmount(f float64) Amount { return Amount{d: decimal.NewFromFloat(f)} }

// NewAmountFromInt creates an Amount from an integer.
func NewAmountFromInt(i int64) Amount { return Amount{d: decimal.NewFromInt(i)} }

// FromDecimal wraps a decimal.Decimal.
func FromDecimal(d decimal.Decimal) Amount { return Amount{d: d} }

// ParseAmount parses s the way a number field is coerced: surrounding
// whitespace is ignored, empty or non-numeric text yields zero.
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero
	}
	return Amount{d: d}
}

// RequireAmount parses s and panics if it is not numeric. Use for literals.
func RequireAmount(s string) Amount { return Amount{d: decimal.RequireFromString(s)} }

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal { return a.d }

// Arithmetic operations

// Add returns a + other.
func (a Amount) Add(other Amount) Amount { return Amount{d: a.d.Add(other.d)} }

// Mul returns a * other.
func (a Amount) Mul(other Amount) Amount { return Amount{d: a.d.Mul(other.d)} }

// Percent returns a * rate / 100.
func (a Amount) Percent(rate Amount) Amount {
	return Amount{d: a.d.Mul(rate.d).Div(hundred)}
}

// Round2 rounds to two decimal places, half away from zero.
func (a Amount) Round2() Amount { return Amount{d: a.d.Round(2)} }

// Comparison methods

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a.d.IsZero() }

// IsNegative returns true if the amount is less than zero.
func (a Amount) IsNegative() bool { return a.d.IsNegative() }

// Equal reports whether both amounts have the same numeric value.
func (a Amount) Equal(other Amount) bool { return a.d.Equal(other.d) }

// Formatting methods

// String returns the shortest plain representation ("25", "12.5", "0.3").
func (a Amount) String() string { return a.d.String() }

// Fixed2 returns the amount with exactly two decimals ("0.30").
func (a Amount) Fixed2() string { return a.d.StringFixed(2) }

// Format prefixes Fixed2 with a currency symbol: Format("€") == "€0.30".
func (a Amount) Format(symbol string) string { return symbol + a.Fixed2() }

// Float64 returns the nearest float64 value.
func (a Amount) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler. It never fails on well-formed
// JSON; values that are not numeric are coerced to zero.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*a = Zero
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = Zero
			return nil //nolint:nilerr // malformed strings coerce to zero
		}
		*a = ParseAmount(s)
	case 't':
		*a = NewAmountFromInt(1)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*a = ParseAmount(string(data))
	default:
		*a = Zero
	}
	return nil
}
