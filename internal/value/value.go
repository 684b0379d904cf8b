// Package value defines the tri-state scalar that flows through a tariff
// graph: every node yields either a decimal, a piece of text, or the
// first-class null "absent". Decimal and text are disjoint; the engine
// never implicitly coerces one to the other.
package value

import "github.com/specialistvlad/tariffgraph/internal/decimal"

// Kind discriminates the variant held by a Value.
type Kind int

const (
	// Absent is the first-class null: distinct from decimal zero or
	// empty text.
	Absent Kind = iota
	// Decimal holds a fixed-precision numeric value.
	Decimal
	// Text holds a string value.
	Text
)

func (k Kind) String() string {
	switch k {
	case Decimal:
		return "decimal"
	case Text:
		return "text"
	default:
		return "absent"
	}
}

// Value is the tagged scalar every node in the graph produces.
type Value struct {
	kind Kind
	dec  decimal.Decimal
	text string
}

// NewAbsent returns the absent value.
func NewAbsent() Value {
	return Value{kind: Absent}
}

// NewDecimal wraps a decimal.Decimal as a Value.
func NewDecimal(d decimal.Decimal) Value {
	return Value{kind: Decimal, dec: d}
}

// NewText wraps a string as a Value.
func NewText(s string) Value {
	return Value{kind: Text, text: s}
}

// Kind reports which variant this Value holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether v is the absent value.
func (v Value) IsAbsent() bool {
	return v.kind == Absent
}

// Decimal returns the wrapped decimal and true, or the zero Decimal and
// false if v does not hold a decimal.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.kind != Decimal {
		return decimal.Decimal{}, false
	}
	return v.dec, true
}

// Text returns the wrapped string and true, or "" and false if v does not
// hold text.
func (v Value) Text() (string, bool) {
	if v.kind != Text {
		return "", false
	}
	return v.text, true
}

// Equal reports whether v and other hold the same kind and scalar value.
// Two absent values are equal; a decimal and a text value are never equal
// regardless of their contents.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Decimal:
		return v.dec.Equal(other.dec)
	case Text:
		return v.text == other.text
	default:
		return true
	}
}

// String renders v for logging and trace output.
func (v Value) String() string {
	switch v.kind {
	case Decimal:
		return v.dec.String()
	case Text:
		return v.text
	default:
		return "<absent>"
	}
}
