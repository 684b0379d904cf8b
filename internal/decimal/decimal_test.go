package decimal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromString(t *testing.T) {
	d, err := NewFromString("123.45")
	require.NoError(t, err)
	assert.Equal(t, "123.45", d.String())

	_, err = NewFromString("not-a-number")
	require.Error(t, err)
}

func TestArithmetic(t *testing.T) {
	a := MustFromString("500")
	b := MustFromString("25")

	assert.Equal(t, "525", a.Add(b).String())
	assert.Equal(t, "12500", a.Mul(b).String())
	assert.Equal(t, "-500", a.Neg().String())
	assert.Equal(t, "500", a.Neg().Abs().String())
}

func TestCmp(t *testing.T) {
	a := MustFromString("10")
	b := MustFromString("20")

	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(a))
}

func TestRoundHalfUp(t *testing.T) {
	v := MustFromString("1.005")
	assert.Equal(t, "1.01", v.Round(2, HalfUp).String())

	v2 := MustFromString("2.5")
	assert.Equal(t, "3", v2.Round(0, HalfUp).String())
}

func TestRoundHalfEven(t *testing.T) {
	assert.Equal(t, "2", MustFromString("2.5").Round(0, HalfEven).String())
	assert.Equal(t, "4", MustFromString("3.5").Round(0, HalfEven).String())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("HALF_UP")
	require.NoError(t, err)
	assert.Equal(t, HalfUp, m)

	m, err = ParseMode("HALF_EVEN")
	require.NoError(t, err)
	assert.Equal(t, HalfEven, m)

	_, err = ParseMode("HALF_TO_INFINITY")
	require.Error(t, err)
}
