package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/specialistvlad/tariffgraph/internal/decimal"
)

func TestAbsent(t *testing.T) {
	v := NewAbsent()
	assert.True(t, v.IsAbsent())
	assert.Equal(t, Absent, v.Kind())
	_, ok := v.Decimal()
	assert.False(t, ok)
}

func TestDecimalValue(t *testing.T) {
	v := NewDecimal(decimal.MustFromString("1.5"))
	assert.False(t, v.IsAbsent())
	assert.Equal(t, Decimal, v.Kind())
	d, ok := v.Decimal()
	assert.True(t, ok)
	assert.Equal(t, "1.5", d.String())

	_, ok = v.Text()
	assert.False(t, ok)
}

func TestTextValue(t *testing.T) {
	v := NewText("BMW")
	assert.Equal(t, Text, v.Kind())
	s, ok := v.Text()
	assert.True(t, ok)
	assert.Equal(t, "BMW", s)
}

func TestEqual(t *testing.T) {
	a := NewDecimal(decimal.MustFromString("1.50"))
	b := NewDecimal(decimal.MustFromString("1.5"))
	assert.True(t, a.Equal(b))

	c := NewText("x")
	assert.False(t, a.Equal(c))

	assert.True(t, NewAbsent().Equal(NewAbsent()))
}
