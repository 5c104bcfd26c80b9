package movement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
)

func TestTradeSignedAmount(t *testing.T) {
	buy := NewTrade(1, 1, date.New(2025, 1, 10), 42, "USD", Buy, money.Qty(10), money.New(15.0, "USD"))
	buy.Commissions = money.New(1, "USD")
	require.NoError(t, buy.Validate())
	assert.True(t, buy.SignedAmount().Equal(money.New(-151, "USD")))

	sell := NewTrade(2, 1, date.New(2025, 2, 1), 42, "USD", Sell, money.Qty(5), money.New(20.0, "USD"))
	assert.True(t, sell.SignedAmount().Equal(money.New(100, "USD")))
}

func TestOptionNetPremiumSellToOpen(t *testing.T) {
	o := NewOptionTrade(1, 1, date.New(2024, 5, 30), 7, "USD", SellToOpen, Put, money.New(8.0, "USD"), date.New(2024, 6, 7), money.Qty(1), money.New(0.1386, "USD"))
	require.NoError(t, o.Validate())
	assert.True(t, o.NetPremium().Equal(money.New(13.86, "USD")))
}

func TestOptionValidateExpirationBeforeTrade(t *testing.T) {
	o := NewOptionTrade(1, 1, date.New(2024, 6, 7), 7, "USD", SellToOpen, Put, money.New(8.0, "USD"), date.New(2024, 5, 30), money.Qty(1), money.New(0.1, "USD"))
	require.Error(t, o.Validate())
}

func TestDividendTaxIsNegative(t *testing.T) {
	tax := NewDividendTax(1, 1, date.New(2025, 1, 1), 7, money.New(5, "USD"))
	assert.True(t, tax.SignedAmount().Equal(money.New(-5, "USD")))
}

func TestConversionValidation(t *testing.T) {
	bm := NewBrokerMovement(1, 1, date.New(2025, 1, 1), Conversion, money.New(100, "EUR"))
	require.Error(t, bm.Validate()) // missing FromCurrency/AmountChanged
	bm.FromCurrency = "USD"
	bm.AmountChanged = money.New(110, "USD")
	require.NoError(t, bm.Validate())
}
