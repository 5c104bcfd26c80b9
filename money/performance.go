package money

import "github.com/shopspring/decimal"

// Performance is the ticker-currency snapshot's "performance" figure:
// totalIncomes divided by the capital at risk, expressed as a percentage.
// Grounded on etnz-portfolio's type_performance.go.
type Performance struct{ value decimal.Decimal }

// PerformanceOf computes totalIncomes/denominator * 100, per spec §4.4,
// returning zero when the denominator is at or below epsilon.
func PerformanceOf(totalIncomes Money, denominator Money) Performance {
	if denominator.Abs().value.LessThanOrEqual(epsilon) {
		return Performance{}
	}
	return Performance{value: totalIncomes.value.Div(denominator.Abs().value).Mul(decimal.NewFromInt(100))}
}

func (p Performance) Decimal() decimal.Decimal { return p.value }
func (p Performance) String() string           { return Percent(p).String() }
