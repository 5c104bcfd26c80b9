package money

import "github.com/shopspring/decimal"

// Quantity is a dimensionless exact decimal: share counts, contract counts,
// split ratios. Grounded on etnz-portfolio's type_quantity.go.
type Quantity struct {
	value decimal.Decimal
}

// Qty constructs a Quantity from any of the usual numeric kinds.
func Qty[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: toDecimal(value)}
}

// Decimal exposes the raw value.
func (q Quantity) Decimal() decimal.Decimal { return q.value }

func (q Quantity) Equal(p Quantity) bool              { return q.value.Equal(p.value) }
func (q Quantity) LessThan(p Quantity) bool           { return q.value.LessThan(p.value) }
func (q Quantity) GreaterThan(p Quantity) bool        { return q.value.GreaterThan(p.value) }
func (q Quantity) GreaterThanOrEqual(p Quantity) bool { return q.value.GreaterThanOrEqual(p.value) }
func (q Quantity) IsZero() bool                       { return q.value.IsZero() }
func (q Quantity) IsPositive() bool                   { return q.value.IsPositive() }
func (q Quantity) IsNegative() bool                   { return q.value.IsNegative() }
func (q Quantity) Add(p Quantity) Quantity            { return Quantity{q.value.Add(p.value)} }
func (q Quantity) Sub(p Quantity) Quantity            { return Quantity{q.value.Sub(p.value)} }
func (q Quantity) Mul(p Quantity) Quantity            { return Quantity{q.value.Mul(p.value)} }
func (q Quantity) Div(p Quantity) Quantity {
	return Quantity{q.value.DivRound(p.value, InternalScale+4)}
}
func (q Quantity) String() string { return q.value.String() }

// Mul multiplies a Money by a dimensionless Quantity.
func (m Money) Mul(q Quantity) Money {
	return clamp(Money{value: m.value.Mul(q.value), currency: m.currency})
}

// DivQty divides a Money by a dimensionless Quantity.
func (m Money) DivQty(q Quantity) Money {
	return clamp(Money{value: m.value.DivRound(q.value, InternalScale+4), currency: m.currency})
}

// DivPrice divides a Money amount by a per-unit price Money of the same
// currency, yielding a dimensionless Quantity (e.g. amount / price = shares).
func (m Money) DivPrice(price Money) Quantity {
	mustMatch(m, price)
	return Quantity{value: m.value.DivRound(price.value, InternalScale+4)}
}
