package acctcompose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/acctproj"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
)

type fixedRates struct {
	rates map[string]float64
}

func (f fixedRates) ExchangeRate(currency string, _ date.Date) (money.Money, bool) {
	r, ok := f.rates[currency]
	if !ok {
		return money.Money{}, false
	}
	return money.New(r, currency), true
}

func TestComposeConvertsOtherCurrenciesIntoMain(t *testing.T) {
	acct := movement.AccountID(1)
	on := date.New(2025, 1, 1)
	perCurrency := map[string][]acctproj.Snapshot{
		"USD": {{Account: acct, Currency: "USD", Date: on, NetCashFlow: money.New(1000, "USD")}},
		"EUR": {{Account: acct, Currency: "EUR", Date: on, NetCashFlow: money.New(100, "EUR")}},
	}
	rates := fixedRates{rates: map[string]float64{"EUR": 1.1}}

	snaps := Compose(acct, "USD", perCurrency, rates)
	require.Len(t, snaps, 1)
	s := snaps[0]
	assert.Equal(t, "USD", s.MainCurrency.Currency)
	require.Len(t, s.OtherCurrencies, 1)
	assert.Equal(t, "EUR", s.OtherCurrencies[0].Currency)
	assert.Empty(t, s.ConversionWarnings)
	assert.True(t, s.PortfolioValue.Equal(money.New(1110, "USD")))
}

func TestComposeFallsBackWhenRateMissing(t *testing.T) {
	acct := movement.AccountID(2)
	on := date.New(2025, 1, 1)
	perCurrency := map[string][]acctproj.Snapshot{
		"USD": {{Account: acct, Currency: "USD", Date: on, NetCashFlow: money.New(500, "USD")}},
		"GBP": {{Account: acct, Currency: "GBP", Date: on, NetCashFlow: money.New(50, "GBP")}},
	}

	snaps := Compose(acct, "USD", perCurrency, fixedRates{rates: map[string]float64{}})
	require.Len(t, snaps, 1)
	s := snaps[0]
	assert.Equal(t, []string{"GBP"}, s.ConversionWarnings)
	assert.True(t, s.PortfolioValue.Equal(money.New(500, "USD")))
}

func TestSelectMainCurrencyPrefersConfigured(t *testing.T) {
	perCurrency := map[string][]acctproj.Snapshot{
		"USD": {{Deposited: money.New(100, "USD")}},
		"EUR": {{Deposited: money.New(900, "EUR")}},
	}
	assert.Equal(t, "USD", SelectMainCurrency("USD", perCurrency))
}

func TestSelectMainCurrencyFallsBackToLargestDeposited(t *testing.T) {
	perCurrency := map[string][]acctproj.Snapshot{
		"USD": {{Deposited: money.New(100, "USD")}},
		"EUR": {{Deposited: money.New(900, "EUR")}},
	}
	assert.Equal(t, "EUR", SelectMainCurrency("", perCurrency))
}
