package tickercompose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/tickerproj"
)

func TestComposeSelectsConfiguredMainCurrency(t *testing.T) {
	ticker := movement.TickerID(7)
	usd := []tickerproj.Snapshot{
		{Ticker: ticker, Currency: "USD", Date: date.New(2025, 1, 1), CostBasis: money.New(1000, "USD"), RiskBase: money.New(1000, "USD")},
	}
	eur := []tickerproj.Snapshot{
		{Ticker: ticker, Currency: "EUR", Date: date.New(2025, 1, 1), CostBasis: money.New(500, "EUR"), RiskBase: money.New(500, "EUR")},
	}

	out := Compose(ticker, "EUR", map[string][]tickerproj.Snapshot{"USD": usd, "EUR": eur})
	require.Len(t, out, 1)
	assert.Equal(t, "EUR", out[0].MainCurrency.Currency)
	require.Len(t, out[0].OtherCurrencies, 1)
	assert.Equal(t, "USD", out[0].OtherCurrencies[0].Currency)
}

func TestComposeFallsBackToHighestCostBasis(t *testing.T) {
	ticker := movement.TickerID(8)
	usd := []tickerproj.Snapshot{
		{Ticker: ticker, Currency: "USD", Date: date.New(2025, 1, 1), CostBasis: money.New(1000, "USD"), RiskBase: money.New(1000, "USD")},
	}
	eur := []tickerproj.Snapshot{
		{Ticker: ticker, Currency: "EUR", Date: date.New(2025, 1, 1), CostBasis: money.New(500, "EUR"), RiskBase: money.New(500, "EUR")},
	}

	out := Compose(ticker, "GBP", map[string][]tickerproj.Snapshot{"USD": usd, "EUR": eur})
	require.Len(t, out, 1)
	assert.Equal(t, "USD", out[0].MainCurrency.Currency)
}

func TestComposeCarriesForwardMissingCurrencyDates(t *testing.T) {
	ticker := movement.TickerID(9)
	usd := []tickerproj.Snapshot{
		{Ticker: ticker, Currency: "USD", Date: date.New(2025, 1, 1), CostBasis: money.New(100, "USD"), RiskBase: money.New(100, "USD")},
		{Ticker: ticker, Currency: "USD", Date: date.New(2025, 2, 1), CostBasis: money.New(200, "USD"), RiskBase: money.New(200, "USD")},
	}
	eur := []tickerproj.Snapshot{
		{Ticker: ticker, Currency: "EUR", Date: date.New(2025, 1, 15), CostBasis: money.New(50, "EUR"), RiskBase: money.New(50, "EUR")},
	}

	out := Compose(ticker, "USD", map[string][]tickerproj.Snapshot{"USD": usd, "EUR": eur})
	require.Len(t, out, 3)
	// 2025-02-01: EUR carries forward its 2025-01-15 entry.
	last := out[2]
	require.Len(t, last.OtherCurrencies, 1)
	assert.True(t, last.OtherCurrencies[0].CostBasis.Equal(money.New(50, "EUR")))
}
