package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/acctcompose"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/acctproj"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
)

func TestComposeBrokerSumsAccountsLinearly(t *testing.T) {
	broker := movement.BrokerID(1)
	acctA := movement.AccountID(1)
	acctB := movement.AccountID(2)
	on := date.New(2025, 1, 1)

	perAccount := map[movement.AccountID][]acctcompose.Snapshot{
		acctA: {{
			Account:        acctA,
			Date:           on,
			MainCurrency:   acctproj.Snapshot{Currency: "USD", Deposited: money.New(1000, "USD")},
			PortfolioValue: money.New(1000, "USD"),
		}},
		acctB: {{
			Account:        acctB,
			Date:           on,
			MainCurrency:   acctproj.Snapshot{Currency: "USD", Deposited: money.New(500, "USD")},
			PortfolioValue: money.New(500, "USD"),
		}},
	}

	snaps := ComposeBroker(broker, "USD", perAccount, nil)
	require.Len(t, snaps, 1)
	s := snaps[0]
	assert.True(t, s.MainCurrency.Deposited.Equal(money.New(1500, "USD")))
	assert.True(t, s.PortfolioValue.Equal(money.New(1500, "USD")))
}

func TestComposeBrokerFillsGapsWithCarryForward(t *testing.T) {
	broker := movement.BrokerID(2)
	acctA := movement.AccountID(3)
	acctB := movement.AccountID(4)
	d1 := date.New(2025, 1, 1)
	d2 := date.New(2025, 2, 1)

	perAccount := map[movement.AccountID][]acctcompose.Snapshot{
		acctA: {
			{Account: acctA, Date: d1, MainCurrency: acctproj.Snapshot{Currency: "USD", Deposited: money.New(100, "USD")}, PortfolioValue: money.New(100, "USD")},
		},
		acctB: {
			{Account: acctB, Date: d2, MainCurrency: acctproj.Snapshot{Currency: "USD", Deposited: money.New(200, "USD")}, PortfolioValue: money.New(200, "USD")},
		},
	}

	snaps := ComposeBroker(broker, "USD", perAccount, nil)
	require.Len(t, snaps, 2)
	// at d2, acctA's last-known-state (100) carries forward and adds to acctB's 200.
	assert.True(t, snaps[1].MainCurrency.Deposited.Equal(money.New(300, "USD")))
}

func TestComposeOverviewUnionsCurrencies(t *testing.T) {
	brokerA := movement.BrokerID(1)
	brokerB := movement.BrokerID(2)
	on := date.New(2025, 1, 1)

	perBroker := map[movement.BrokerID][]BrokerSnapshot{
		brokerA: {{Broker: brokerA, Date: on, MainCurrency: acctproj.Snapshot{Currency: "USD", Deposited: money.New(100, "USD")}, PortfolioValue: money.New(100, "USD")}},
		brokerB: {{
			Broker:          brokerB,
			Date:            on,
			MainCurrency:    acctproj.Snapshot{Currency: "EUR", Deposited: money.New(50, "EUR")},
			OtherCurrencies: nil,
			PortfolioValue:  money.New(50, "EUR"),
		}},
	}

	snaps := ComposeOverview("USD", perBroker, nil)
	require.Len(t, snaps, 1)
	s := snaps[0]
	assert.True(t, s.MainCurrency.Deposited.Equal(money.New(100, "USD")))
	require.Len(t, s.OtherCurrencies, 1)
	assert.Equal(t, "EUR", s.OtherCurrencies[0].Currency)
	assert.True(t, s.OtherCurrencies[0].Deposited.Equal(money.New(50, "EUR")))
	assert.Equal(t, []string{"b2"}, s.ConversionWarnings)
}
