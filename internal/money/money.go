// Package money models rupee amounts as integer paise.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in paise (1/100 rupee). Values stored by the ledger are never
// negative.
type Money int64

// Zero is the empty amount.
const Zero Money = 0

const minorDigits = 2

// maxRupees bounds parsed input so the paise value always fits in int64.
var maxRupees = decimal.New(math.MaxInt64/100, 0)

// FromRupees converts a whole rupee count.
func FromRupees(r int64) Money {
	return Money(r * 100)
}

// FromFloat converts a floating point rupee value. NaN, infinities and negative
// values collapse to zero.
func FromFloat(f float64) Money {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return Zero
	}
	return fromDecimal(decimal.NewFromFloat(f))
}

// ParseLenient reads a rupee amount typed into a form field. Currency symbols,
// thousands separators and surrounding spaces are ignored. Anything that does not
// parse as a finite non-negative number yields zero instead of an error.
func ParseLenient(s string) Money {
	m, err := ParseStrict(s)
	if err != nil {
		return Zero
	}
	return m
}

// ErrInvalidAmount is returned by ParseStrict for input that is not a usable amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseStrict reads a rupee amount with the same tolerance for symbols and
// separators as ParseLenient, but reports unparseable, negative or oversized
// input instead of collapsing it to zero. Blank input is zero.
func ParseStrict(s string) (Money, error) {
	cleaned := cleanAmount(s)
	if cleaned == "" {
		return Zero, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, strings.TrimSpace(s))
	}
	if d.IsNegative() {
		return Zero, fmt.Errorf("%w: must not be negative", ErrInvalidAmount)
	}
	if d.GreaterThan(maxRupees) {
		return Zero, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return fromDecimal(d), nil
}

func cleanAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	lower := strings.ToLower(s)
	for _, prefix := range []string{"rs.", "rs", "inr"} {
		if strings.HasPrefix(lower, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	return strings.NewReplacer(",", "", " ", "", "_", "").Replace(s)
}

func fromDecimal(d decimal.Decimal) Money {
	if !d.IsPositive() || d.GreaterThan(maxRupees) {
		return Zero
	}
	return Money(d.Shift(minorDigits).Round(0).IntPart())
}

// Decimal returns the amount in rupees.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -minorDigits)
}

// WholeRupees rounds half-up to the nearest rupee.
func (m Money) WholeRupees() int64 {
	return m.Decimal().Round(0).IntPart()
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m == 0 }

// Max returns the larger amount.
func Max(a, b Money) Money {
	if a > b {
		return a
	}
	return b
}

// String renders the exact rupee value, e.g. "1250.5".
func (m Money) String() string {
	return m.Decimal().String()
}

// MarshalJSON encodes the amount as a rupee number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or string. Malformed input decodes to zero and
// never fails, mirroring how the intake forms treat bad amounts.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = Zero
		return nil
	}
	*m = ParseLenient(unquote(raw))
	return nil
}

func unquote(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// Price is an agreed amount such as a quote or a booking total. It decodes like
// Money but keeps malformed input around so the caller can reject it; storing
// zero in its place would erase the agreed price.
type Price struct {
	Money
	err error
}

// PriceOf wraps an already valid amount.
func PriceOf(m Money) Price { return Price{Money: m} }

// Err reports why the decoded input was rejected, or nil.
func (p Price) Err() error { return p.err }

// UnmarshalJSON accepts a JSON number or string. It never fails so that the
// service layer can name the offending field.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*p = Price{}
		return nil
	}
	m, err := ParseStrict(unquote(raw))
	*p = Price{Money: m, err: err}
	return nil
}
