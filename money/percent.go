package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a ratio expressed out of 100, used for realizedPercentage and
// unrealizedGainsPercentage. Grounded on etnz-portfolio's type_percent.go.
type Percent struct{ value decimal.Decimal }

// Pct constructs a Percent already expressed out of 100 (e.g. Pct(12.5) is 12.5%).
func Pct[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Percent {
	return Percent{value: toDecimal(value)}
}

// Ratio builds a Percent from a numerator/denominator pair, guarding against
// a zero or negligible denominator per spec's "max(deposited, ε)" convention.
func Ratio(numerator, denominator Money) Percent {
	if denominator.Abs().value.LessThan(epsilon) {
		return Percent{}
	}
	return Percent{value: numerator.value.Div(denominator.value).Mul(decimal.NewFromInt(100))}
}

var epsilon = decimal.New(1, -8)

func (p Percent) Decimal() decimal.Decimal { return p.value }

func (p Percent) Equal(q Percent) bool {
	diff := p.value.Sub(q.value).Abs()
	return diff.LessThan(decimal.New(1, -4))
}

func (p Percent) String() string { return fmt.Sprintf("%s%%", p.value.StringFixed(2)) }

func (p Percent) SignedString() string {
	if p.value.IsZero() {
		return "-"
	}
	sign := ""
	if p.value.IsPositive() {
		sign = "+"
	}
	return fmt.Sprintf("%s%s", sign, p.String())
}
