package optionmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
)

// S1 — put sold then expired worthless.
func TestScenarioS1_SoldPutExpired(t *testing.T) {
	m := New("USD", false, Matched)

	sellToOpen := movement.NewOptionTrade(1, 1, date.New(2024, 5, 30), 10, "USD", movement.SellToOpen, movement.Put,
		money.New(8.0, "USD"), date.New(2024, 6, 7), money.Qty(1), money.New(0.1386, "USD"))
	r1, err := m.Apply(sellToOpen)
	require.NoError(t, err)
	assert.True(t, r1.RealizedDelta.IsZero())
	assert.True(t, r1.UnrealizedDeltaChange.Equal(money.New(13.86, "USD")))
	assert.True(t, m.UnrealizedTotal(sellToOpen.Key()).Equal(money.New(13.86, "USD")))

	expired := movement.NewOptionTrade(2, 1, date.New(2024, 6, 7), 10, "USD", movement.Expired, movement.Put,
		money.New(8.0, "USD"), date.New(2024, 6, 7), money.Qty(1), money.New(0, "USD"))
	r2, err := m.Apply(expired)
	require.NoError(t, err)
	assert.True(t, r2.RealizedDelta.Equal(money.New(13.86, "USD")))
	assert.True(t, r2.UnrealizedDeltaChange.Equal(money.New(-13.86, "USD")))
	assert.Equal(t, Empty, m.State(sellToOpen.Key()))
}

// S2 — buy-to-open then sell-to-close with profit, gross-premium convention.
func TestScenarioS2_OpenThenCloseProfit(t *testing.T) {
	m := New("USD", false, Matched)
	key := movement.ContractKey{Ticker: 5, Type: movement.Call, Strike: money.New(20.0, "USD"), Expiration: date.New(2026, 1, 16)}

	open := movement.NewOptionTrade(1, 1, date.New(2025, 8, 25), key.Ticker, "USD", movement.BuyToOpen, movement.Call,
		key.Strike, key.Expiration, money.Qty(1), money.New(5.54, "USD"))
	r1, err := m.Apply(open)
	require.NoError(t, err)
	assert.True(t, r1.UnrealizedDeltaChange.Equal(money.New(-554, "USD")))

	closeTrade := movement.NewOptionTrade(2, 1, date.New(2025, 10, 3), key.Ticker, "USD", movement.SellToClose, movement.Call,
		key.Strike, key.Expiration, money.Qty(1), money.New(7.45, "USD"))
	r2, err := m.Apply(closeTrade)
	require.NoError(t, err)
	// gross premium convention: realized = -554 (open) + 745 (close) = 191.
	assert.True(t, r2.RealizedDelta.Equal(money.New(191, "USD")))
	assert.True(t, r2.UnrealizedDeltaChange.Equal(money.New(554, "USD")))
	assert.Equal(t, Empty, m.State(key))
}

// S4 — multi-contract FIFO: two opens at different premiums, partial close
// realizes only from the first-opened leg.
func TestScenarioS4_MultiContractFIFO(t *testing.T) {
	m := New("USD", false, Matched)
	key := movement.ContractKey{Ticker: 9, Type: movement.Put, Strike: money.New(50, "USD"), Expiration: date.New(2025, 1, 17)}

	open1 := movement.NewOptionTrade(1, 1, date.New(2025, 1, 2), key.Ticker, "USD", movement.SellToOpen, movement.Put,
		key.Strike, key.Expiration, money.Qty(1), money.New(0.20, "USD")) // premium 20
	_, err := m.Apply(open1)
	require.NoError(t, err)

	open2 := movement.NewOptionTrade(2, 1, date.New(2025, 1, 3), key.Ticker, "USD", movement.SellToOpen, movement.Put,
		key.Strike, key.Expiration, money.Qty(1), money.New(0.30, "USD")) // premium 30
	_, err = m.Apply(open2)
	require.NoError(t, err)

	closeTrade := movement.NewOptionTrade(3, 1, date.New(2025, 1, 10), key.Ticker, "USD", movement.BuyToClose, movement.Put,
		key.Strike, key.Expiration, money.Qty(1), money.New(0.15, "USD")) // premium -15 (we pay to close)
	r, err := m.Apply(closeTrade)
	require.NoError(t, err)
	// realized = 20 (first leg, fully consumed) + (-15) (close side) = 5
	assert.True(t, r.RealizedDelta.Equal(money.New(5, "USD")))
	remaining := m.UnrealizedTotal(key)
	assert.True(t, remaining.Equal(money.New(30, "USD")))
}

func TestPermissiveFlipOnOverClose(t *testing.T) {
	m := New("USD", false, Matched)
	key := movement.ContractKey{Ticker: 1, Type: movement.Call, Strike: money.New(10, "USD"), Expiration: date.New(2025, 6, 1)}
	closeTrade := movement.NewOptionTrade(1, 1, date.New(2025, 1, 1), key.Ticker, "USD", movement.BuyToClose, movement.Call,
		key.Strike, key.Expiration, money.Qty(1), money.New(1, "USD"))
	r, err := m.Apply(closeTrade)
	require.NoError(t, err)
	assert.True(t, r.RealizedDelta.IsZero())
	assert.Equal(t, OpenLong, m.State(key))
}

func TestStrictModeSurfacesContractKeyMismatch(t *testing.T) {
	m := New("USD", true, Matched)
	key := movement.ContractKey{Ticker: 1, Type: movement.Call, Strike: money.New(10, "USD"), Expiration: date.New(2025, 6, 1)}
	closeTrade := movement.NewOptionTrade(1, 1, date.New(2025, 1, 1), key.Ticker, "USD", movement.BuyToClose, movement.Call,
		key.Strike, key.Expiration, money.Qty(1), money.New(1, "USD"))
	_, err := m.Apply(closeTrade)
	require.Error(t, err)
}

// MovementSide mode realizes a close's own premium immediately and never
// disturbs the opposite queue, unlike Matched's FIFO consumption.
func TestMovementSidePairingRealizesCloseInFullWithoutTouchingOpens(t *testing.T) {
	m := New("USD", false, MovementSide)
	key := movement.ContractKey{Ticker: 5, Type: movement.Call, Strike: money.New(20.0, "USD"), Expiration: date.New(2026, 1, 16)}

	open := movement.NewOptionTrade(1, 1, date.New(2025, 8, 25), key.Ticker, "USD", movement.BuyToOpen, movement.Call,
		key.Strike, key.Expiration, money.Qty(1), money.New(5.54, "USD"))
	_, err := m.Apply(open)
	require.NoError(t, err)

	closeTrade := movement.NewOptionTrade(2, 1, date.New(2025, 10, 3), key.Ticker, "USD", movement.SellToClose, movement.Call,
		key.Strike, key.Expiration, money.Qty(1), money.New(7.45, "USD"))
	r, err := m.Apply(closeTrade)
	require.NoError(t, err)
	assert.True(t, r.RealizedDelta.Equal(money.New(745, "USD")))
	assert.True(t, r.UnrealizedDeltaChange.IsZero())
	// the open leg is untouched: still fully open at its original premium.
	assert.Equal(t, OpenLong, m.State(key))
	assert.True(t, m.UnrealizedTotal(key).Equal(money.New(-554, "USD")))
}
