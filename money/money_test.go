package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSub(t *testing.T) {
	a := New(10.5, "USD")
	b := New(2.25, "USD")
	assert.True(t, a.Add(b).Equal(New(12.75, "USD")))
	assert.True(t, a.Sub(b).Equal(New(8.25, "USD")))
}

func TestCurrencyMismatchPanics(t *testing.T) {
	a := New(1, "USD")
	b := New(1, "EUR")
	require.Panics(t, func() { a.Add(b) })
}

func TestWeakEmptyCurrency(t *testing.T) {
	zero := Zero("")
	usd := New(5, "USD")
	got := zero.Add(usd)
	assert.Equal(t, "USD", got.Currency())
	assert.True(t, got.Equal(New(5, "USD")))
}

func TestRoundBankerRounding(t *testing.T) {
	// 0.125 rounds to 0.12 under half-to-even at 2 digits.
	m := New(0.125, "USD")
	assert.Equal(t, "0.12", m.Round(2).Decimal().StringFixed(2))
}

func TestMulScalarQuantity(t *testing.T) {
	price := New(7.45, "USD")
	qty := Qty(100)
	assert.True(t, price.Mul(qty).Equal(New(745, "USD")))
}

func TestRatioZeroDenominator(t *testing.T) {
	p := Ratio(New(10, "USD"), Zero("USD"))
	assert.True(t, p.Equal(Pct(0)))
}

func TestOverflowPanics(t *testing.T) {
	huge := New(decimal14(), "USD")
	require.Panics(t, func() { huge.Add(huge) })
}

func decimal14() float64 { return 9e14 }
