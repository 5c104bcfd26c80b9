// Package money implements exact decimal arithmetic tagged by currency, per
// component C1 of the snapshot engine. Internal algebra is never rounded;
// presentation rounds to 2 digits using banker's rounding.
//
// Grounded on etnz-portfolio's type_money.go and type_quantity.go: a
// currency-tagged decimal wrapper over github.com/shopspring/decimal, with
// the same "weak empty currency" convention for zero-value accumulators.
package money

import (
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/engineerr"
)

// InternalScale is the number of fractional digits (quarter-cent) at which
// every Money value is carried internally, per spec §3.
const InternalScale = 4

// PresentationScale is the number of fractional digits used for
// user-visible rounding (banker's rounding), per spec §4.1.
const PresentationScale = 2

// maxMagnitude bounds the representable absolute value of a Money amount.
// Exceeding it is reported as engineerr.Overflow, modeling the i64-scaled
// decimal bound called for by spec §4.1 even though decimal.Decimal itself
// is arbitrary-precision.
var maxMagnitude = decimal.New(1, 15) // 10^15 major units

// Money is an exact decimal amount tagged with a currency code.
type Money struct {
	value    decimal.Decimal
	currency string
}

// Zero returns the zero value of the given currency.
func Zero(currency string) Money {
	return Money{value: decimal.Zero, currency: currency}
}

// New constructs a Money value from any of the usual numeric kinds, scaled
// to InternalScale.
func New[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: toDecimal(value).Round(InternalScale), currency: currency}
}

func toDecimal[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported numeric type")
	}
}

// Currency returns the ISO-4217-like currency code this value is tagged with.
func (m Money) Currency() string { return m.currency }

// Decimal exposes the raw decimal value, for callers (like the store
// layer) that need to persist the exact figure.
func (m Money) Decimal() decimal.Decimal { return m.value }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.value.IsZero() }

// IsPositive reports whether the amount is strictly positive.
func (m Money) IsPositive() bool { return m.value.IsPositive() }

// IsNegative reports whether the amount is strictly negative.
func (m Money) IsNegative() bool { return m.value.IsNegative() }

// Equal reports exact equality: same currency and same scaled value.
func (m Money) Equal(n Money) bool {
	return m.value.Equal(n.value) && sameCurrency(m, n)
}

// LessThan reports m < n, after checking currency compatibility.
func (m Money) LessThan(n Money) bool { mustMatch(m, n); return m.value.LessThan(n.value) }

// LessThanOrEqual reports m <= n.
func (m Money) LessThanOrEqual(n Money) bool {
	mustMatch(m, n)
	return m.value.LessThanOrEqual(n.value)
}

// GreaterThan reports m > n.
func (m Money) GreaterThan(n Money) bool { mustMatch(m, n); return m.value.GreaterThan(n.value) }

// GreaterThanOrEqual reports m >= n.
func (m Money) GreaterThanOrEqual(n Money) bool {
	mustMatch(m, n)
	return m.value.GreaterThanOrEqual(n.value)
}

// Neg returns -m.
func (m Money) Neg() Money { return Money{value: m.value.Neg(), currency: m.currency} }

// Abs returns |m|.
func (m Money) Abs() Money { return Money{value: m.value.Abs(), currency: m.currency} }

// Add returns m+n. Panics with a CurrencyMismatch-kinded error if both sides
// carry a non-empty, differing currency — this is a programmer bug per
// spec §7, not a recoverable condition.
func (m Money) Add(n Money) Money {
	return clamp(Money{value: m.value.Add(n.value), currency: resolveCurrency(m, n)})
}

// Sub returns m-n.
func (m Money) Sub(n Money) Money {
	return clamp(Money{value: m.value.Sub(n.value), currency: resolveCurrency(m, n)})
}

// MulScalar returns m scaled by a dimensionless decimal factor (quantity,
// contract multiplier, split ratio...).
func (m Money) MulScalar(factor decimal.Decimal) Money {
	return clamp(Money{value: m.value.Mul(factor), currency: m.currency})
}

// DivScalar returns m divided by a dimensionless decimal factor.
func (m Money) DivScalar(factor decimal.Decimal) Money {
	return clamp(Money{value: m.value.DivRound(factor, InternalScale+4), currency: m.currency})
}

// Round returns a copy rounded to the given number of fractional digits
// using banker's (half-to-even) rounding. shopspring/decimal's Round is
// half-away-from-zero; RoundBank gives the spec-mandated convention.
func (m Money) Round(digits int32) Money {
	return Money{value: m.value.RoundBank(digits), currency: m.currency}
}

// String renders m at PresentationScale using banker's rounding.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.value.RoundBank(PresentationScale).StringFixed(PresentationScale), m.currency)
}

// SignedString renders m with an explicit sign, or "-" for zero, mirroring
// the teacher's presentation convention in type_money.go.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// sameCurrency allows comparisons against an untagged (empty-currency) zero
// value, matching the teacher's "weak empty currency" rule.
func sameCurrency(a, b Money) bool {
	if a.currency == "" || b.currency == "" {
		return true
	}
	return a.currency == b.currency
}

func resolveCurrency(a, b Money) string {
	if a.currency == "" {
		return b.currency
	}
	if b.currency == "" {
		return a.currency
	}
	if a.currency != b.currency {
		panic(engineerr.New(engineerr.CurrencyMismatch, "cannot combine %s and %s", a.currency, b.currency))
	}
	return a.currency
}

func mustMatch(a, b Money) {
	if a.currency != "" && b.currency != "" && a.currency != b.currency {
		panic(engineerr.New(engineerr.CurrencyMismatch, "cannot compare %s and %s", a.currency, b.currency))
	}
}

func clamp(m Money) Money {
	if m.value.Abs().GreaterThanOrEqual(maxMagnitude) {
		panic(engineerr.New(engineerr.Overflow, "money value %s exceeds representable bound", m.value.String()))
	}
	return m
}

// FractionDigits returns the ISO currency's conventional number of minor
// units, via Rhymond/go-money's currency table (e.g. JPY -> 0, USD -> 2).
func FractionDigits(currency string) int32 {
	return int32(gomoney.New(0, currency).Currency().Fraction)
}
