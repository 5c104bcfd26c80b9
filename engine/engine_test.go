package engine

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/engineerr"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/recompute"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/signalbus"
)

const (
	acct1   = movement.AccountID(1)
	broker1 = movement.BrokerID(1)
	ticker1 = movement.TickerID(7)
)

func newTestEngine() *Engine {
	return New(Config{
		Config: recompute.Config{
			MainCurrencyForAccount: func(movement.AccountID) string { return "USD" },
			MainCurrencyForBroker:  func(movement.BrokerID) string { return "USD" },
			OverviewMainCurrency:   "USD",
		},
		Log: zerolog.Nop(),
	})
}

func TestImportRejectsMovementForUnregisteredAccount(t *testing.T) {
	e := newTestEngine()
	deposit := movement.NewBrokerMovement(1, acct1, date.New(2025, 1, 1), movement.Deposit, money.New(1000, "USD"))

	_, err := e.Import(context.Background(), []movement.Movement{deposit}, ImportOptions{})
	require.Error(t, err)
	kind, ok := engineerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, engineerr.MissingAccount, kind)
}

func TestImportRejectsInvalidMovement(t *testing.T) {
	e := newTestEngine()
	e.RegisterAccount(acct1, broker1)
	bad := movement.NewTrade(1, acct1, date.New(2025, 1, 1), ticker1, "USD", movement.Buy, money.Qty(-1), money.New(100, "USD"))

	_, err := e.Import(context.Background(), []movement.Movement{bad}, ImportOptions{})
	require.Error(t, err)
	kind, ok := engineerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, engineerr.InvalidMovement, kind)
}

func TestImportRecomputesAndExposesSnapshots(t *testing.T) {
	e := newTestEngine()
	e.RegisterAccount(acct1, broker1)

	deposit := movement.NewBrokerMovement(1, acct1, date.New(2025, 1, 1), movement.Deposit, money.New(1000, "USD"))
	trade := movement.NewTrade(2, acct1, date.New(2025, 1, 5), ticker1, "USD", movement.Buy, money.Qty(10), money.New(100, "USD"))

	ch, cancel := e.Subscribe(signalbus.SnapshotsUpdated)
	defer cancel()

	result, err := e.Import(context.Background(), []movement.Movement{deposit, trade}, ImportOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, result.BatchID)
	require.Greater(t, result.RecomputedKeys, 0)

	select {
	case <-ch:
	default:
		t.Fatal("expected a SnapshotsUpdated signal after import")
	}

	tcSeries := e.GetTickerCurrencySnapshots(ticker1, "USD", date.Date{})
	require.NotEmpty(t, tcSeries)

	tickerSeries := e.GetTickerSnapshots(ticker1, date.Date{})
	require.NotEmpty(t, tickerSeries)

	acctSeries := e.GetSnapshots(acct1, date.Date{})
	require.NotEmpty(t, acctSeries)

	brokerSeries := e.GetBrokerSnapshots(broker1, date.Date{})
	require.NotEmpty(t, brokerSeries)

	overview := e.GetOverviewSnapshots(date.Date{})
	require.NotEmpty(t, overview)
}

func TestImportWithNoMovementsIsNoOp(t *testing.T) {
	e := newTestEngine()
	e.RegisterAccount(acct1, broker1)

	result, err := e.Import(context.Background(), nil, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.RecomputedKeys)
}

func TestRegisterAccountMovesOwnershipBetweenBrokers(t *testing.T) {
	e := newTestEngine()
	const broker2 = movement.BrokerID(2)

	e.RegisterAccount(acct1, broker1)
	assert.Equal(t, []movement.AccountID{acct1}, e.AccountsOf(broker1))

	e.RegisterAccount(acct1, broker2)
	assert.Empty(t, e.AccountsOf(broker1))
	assert.Equal(t, []movement.AccountID{acct1}, e.AccountsOf(broker2))
	assert.Equal(t, broker2, e.BrokerOf(acct1))
}
