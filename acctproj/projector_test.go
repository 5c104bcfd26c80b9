package acctproj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/tickerproj"
)

func fixedClock(on date.Date) func() date.Date {
	return func() date.Date { return on }
}

// S3-style deposits/withdrawal accounting.
func TestProjectDepositsAndWithdrawal(t *testing.T) {
	acct := movement.AccountID(1)
	deposit1 := movement.NewBrokerMovement(1, acct, date.New(2025, 1, 1), movement.Deposit, money.New(1000, "USD"))
	deposit2 := movement.NewBrokerMovement(2, acct, date.New(2025, 1, 5), movement.Deposit, money.New(500, "USD"))
	withdrawal := movement.NewBrokerMovement(3, acct, date.New(2025, 1, 10), movement.Withdrawal, money.New(25, "USD"))

	all := []movement.Movement{deposit1, deposit2, withdrawal}
	p := New(acct, "USD").WithClock(fixedClock(date.New(2025, 1, 10)))
	snaps, err := p.Project([]movement.BrokerMovement{deposit1, deposit2, withdrawal}, nil, all)
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	last := snaps[2]
	assert.True(t, last.Deposited.Equal(money.New(1500, "USD")))
	assert.True(t, last.Withdrawn.Equal(money.New(25, "USD")))
	assert.Equal(t, int64(3), last.MovementCounter)
}

func TestProjectAggregatesTickerSeries(t *testing.T) {
	acct := movement.AccountID(2)
	ticker := movement.TickerID(7)
	deposit := movement.NewBrokerMovement(1, acct, date.New(2025, 1, 1), movement.Deposit, money.New(1000, "USD"))

	tickerSeries := map[movement.TickerID][]tickerproj.Snapshot{
		ticker: {
			{Ticker: ticker, Currency: "USD", Date: date.New(2025, 1, 2), CostBasis: money.New(500, "USD"), Realized: money.New(10, "USD"), OpenTrades: true},
		},
	}
	all := []movement.Movement{deposit}

	p := New(acct, "USD").WithClock(fixedClock(date.New(2025, 1, 2)))
	snaps, err := p.Project([]movement.BrokerMovement{deposit}, tickerSeries, all)
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	last := snaps[1]
	assert.True(t, last.Invested.Equal(money.New(500, "USD")))
	assert.True(t, last.RealizedGains.Equal(money.New(10, "USD")))
	assert.True(t, last.OpenTrades)
}

func TestProjectConversionSplitsAcrossCurrencies(t *testing.T) {
	acct := movement.AccountID(3)
	conv := movement.NewBrokerMovement(1, acct, date.New(2025, 1, 1), movement.Conversion, money.New(110, "USD"))
	conv.FromCurrency = "EUR"
	conv.AmountChanged = money.New(100, "EUR")

	all := []movement.Movement{conv}

	usdProjector := New(acct, "USD").WithClock(fixedClock(date.New(2025, 1, 1)))
	usdSnaps, err := usdProjector.Project([]movement.BrokerMovement{conv}, nil, all)
	require.NoError(t, err)
	require.Len(t, usdSnaps, 1)
	assert.True(t, usdSnaps[0].TransferredIn.Equal(money.New(110, "USD")))

	eurProjector := New(acct, "EUR").WithClock(fixedClock(date.New(2025, 1, 1)))
	eurSnaps, err := eurProjector.Project([]movement.BrokerMovement{conv}, nil, all)
	require.NoError(t, err)
	require.Len(t, eurSnaps, 1)
	assert.True(t, eurSnaps[0].TransferredOut.Equal(money.New(100, "EUR")))
}
