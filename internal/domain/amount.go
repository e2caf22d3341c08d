package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of fractional decimal digits carried by
// every monetary amount. Input with more significant fractional digits is
// rejected rather than rounded.
const AmountPrecision = 4

// Amount is an exact decimal monetary value with AmountPrecision fractional
// digits. The zero value is 0.0000. Arithmetic is exact: no binary float is
// involved at any point, so repeated addition of 0.0001 never drifts.
type Amount struct {
	value decimal.Decimal
}

// ZeroAmount is the additive identity.
var ZeroAmount = Amount{}

// ParseAmount parses a decimal literal such as "1.5" or "0.0001".
// It fails if the text is not a decimal number or if the value carries more
// than AmountPrecision significant fractional digits (trailing zeros beyond
// the fourth digit are tolerated, "1.50000" parses as 1.5000).
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: amount %q: %v", ErrMalformedRecord, s, err)
	}
	if !d.Equal(d.Truncate(AmountPrecision)) {
		return Amount{}, fmt.Errorf("%w: amount %q exceeds %d decimal places", ErrMalformedRecord, s, AmountPrecision)
	}
	return Amount{value: d}, nil
}

// MustAmount parses a decimal literal and panics on failure.
// Intended for constants and tests.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a + b. Exact.
func (a Amount) Add(b Amount) Amount {
	return Amount{value: a.value.Add(b.value)}
}

// Sub returns a - b. Exact; the result may be negative.
func (a Amount) Sub(b Amount) Amount {
	return Amount{value: a.value.Sub(b.value)}
}

// IsNegative reports whether the amount is strictly below zero.
func (a Amount) IsNegative() bool { return a.value.IsNegative() }

// IsPositive reports whether the amount is strictly above zero.
func (a Amount) IsPositive() bool { return a.value.IsPositive() }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.value.IsZero() }

// Cmp compares a and b: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) int { return a.value.Cmp(b.value) }

// Equal reports exact equality (1.5 == 1.5000).
func (a Amount) Equal(b Amount) bool { return a.value.Equal(b.value) }

// GreaterThan reports a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.value.GreaterThan(b.value) }

// String renders the amount with exactly AmountPrecision fractional digits,
// the report format: 1.5 prints as "1.5000".
func (a Amount) String() string {
	return a.value.StringFixed(AmountPrecision)
}

// MarshalJSON renders the amount as a JSON string to avoid any consumer
// re-introducing float rounding.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer so amounts persist as exact text.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner for the text representation written by Value.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		return a.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
}
