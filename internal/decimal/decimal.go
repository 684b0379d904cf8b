// Package decimal provides the fixed-precision signed decimal value used
// throughout the pricing engine. It wraps github.com/shopspring/decimal so
// that every intermediate computation in a tariff graph is exact: no
// floating-point arithmetic, no hidden rounding outside of an explicit
// ROUND node.
package decimal

import (
	"fmt"

	shopspring "github.com/shopspring/decimal"
)

// Decimal is an arbitrary-precision signed decimal value.
type Decimal struct {
	inner shopspring.Decimal
}

// Zero is the additive identity.
var Zero = Decimal{inner: shopspring.Zero}

// One is the multiplicative identity.
var One = Decimal{inner: shopspring.NewFromInt(1)}

// NewFromInt builds a Decimal from an int64.
func NewFromInt(v int64) Decimal {
	return Decimal{inner: shopspring.NewFromInt(v)}
}

// NewFromString parses a decimal literal exactly as authored: integer and
// decimal literals, and strings of digits, are all accepted. Returns a
// DomainError-flavored error on malformed input; callers in this package's
// consumers are expected to wrap it via evalerror.
func NewFromString(s string) (Decimal, error) {
	d, err := shopspring.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal literal %q: %w", s, err)
	}
	return Decimal{inner: d}, nil
}

// MustFromString is NewFromString but panics on error; intended for
// compile-time constants baked into a declaration (CONSTANT nodes,
// thresholds) where the value is known to be well-formed.
func MustFromString(s string) Decimal {
	d, err := NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Add returns d + other.
func (d Decimal) Add(other Decimal) Decimal {
	return Decimal{inner: d.inner.Add(other.inner)}
}

// Mul returns d * other.
func (d Decimal) Mul(other Decimal) Decimal {
	return Decimal{inner: d.inner.Mul(other.inner)}
}

// Neg returns -d.
func (d Decimal) Neg() Decimal {
	return Decimal{inner: d.inner.Neg()}
}

// Abs returns |d|.
func (d Decimal) Abs() Decimal {
	return Decimal{inner: d.inner.Abs()}
}

// Cmp compares d to other: -1, 0, or 1.
func (d Decimal) Cmp(other Decimal) int {
	return d.inner.Cmp(other.inner)
}

// Equal reports whether d and other represent the same numeric value,
// regardless of trailing-zero scale (1.50 == 1.5).
func (d Decimal) Equal(other Decimal) bool {
	return d.inner.Equal(other.inner)
}

// Mode selects a rounding strategy for Round.
type Mode int

const (
	// HalfUp rounds .5 away from zero (the spec's HALF_UP).
	HalfUp Mode = iota
	// HalfEven rounds .5 to the nearest even digit, a.k.a. banker's
	// rounding (the spec's HALF_EVEN).
	HalfEven
)

// Round rounds d to the given number of fractional digits under mode.
func (d Decimal) Round(places int32, mode Mode) Decimal {
	switch mode {
	case HalfEven:
		return Decimal{inner: d.inner.RoundBank(places)}
	default:
		return Decimal{inner: d.inner.Round(places)}
	}
}

// String renders the decimal using its exact representation, keeping its
// scale: trailing fractional zeros are preserved, so "1.20" renders as
// "1.20" and a value rounded to 2 places renders with 2 fractional digits.
func (d Decimal) String() string {
	if exp := d.inner.Exponent(); exp < 0 {
		return d.inner.StringFixed(-exp)
	}
	return d.inner.String()
}

// IntPart truncates d to its integer part, for consumers keyed by int64
// (ExactMatchTable's integer-keyed variant).
func (d Decimal) IntPart() int64 {
	return d.inner.IntPart()
}

// ParseMode maps a declaration-level rounding mode name to a Mode. Only
// HALF_UP and HALF_EVEN are recognized.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "HALF_UP":
		return HalfUp, nil
	case "HALF_EVEN":
		return HalfEven, nil
	default:
		return 0, fmt.Errorf("unknown rounding mode %q", name)
	}
}

func (m Mode) String() string {
	if m == HalfEven {
		return "HALF_EVEN"
	}
	return "HALF_UP"
}
