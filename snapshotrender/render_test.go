package snapshotrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/acctcompose"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/acctproj"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/aggregate"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
)

func countHeadings(t *testing.T, content []byte) int {
	t.Helper()
	root := goldmark.DefaultParser().Parse(text.NewReader(content))
	count := 0
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if _, ok := n.(*ast.Heading); ok {
				count++
			}
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return count
}

func TestAccountMarkdownRendersValidMarkdownWithHeadingsAndTable(t *testing.T) {
	series := []acctcompose.Snapshot{
		{
			Account: movement.AccountID(1),
			Date:    date.New(2025, 1, 1),
			MainCurrency: acctproj.Snapshot{
				Currency:      "USD",
				Deposited:     money.New(1000, "USD"),
				RealizedGains: money.New(0, "USD"),
			},
			PortfolioValue: money.New(1000, "USD"),
		},
		{
			Account: movement.AccountID(1),
			Date:    date.New(2025, 1, 5),
			MainCurrency: acctproj.Snapshot{
				Currency:      "USD",
				Deposited:     money.New(1000, "USD"),
				RealizedGains: money.New(50, "USD"),
			},
			PortfolioValue:     money.New(1050, "USD"),
			ConversionWarnings: []string{"EUR rate missing"},
		},
	}

	out := AccountMarkdown("1", series)
	assert.Contains(t, out, "Account 1")
	assert.Contains(t, out, "2025-01-05")
	assert.Contains(t, out, "EUR rate missing")
	assert.GreaterOrEqual(t, countHeadings(t, []byte(out)), 2)
}

func TestAccountMarkdownHandlesEmptySeries(t *testing.T) {
	out := AccountMarkdown("1", nil)
	assert.Contains(t, out, "No snapshots available")
}

func TestOverviewMarkdownRendersValidMarkdown(t *testing.T) {
	series := []aggregate.OverviewSnapshot{
		{
			Date:           date.New(2025, 1, 1),
			MainCurrency:   acctproj.Snapshot{Currency: "USD", RealizedGains: money.New(10, "USD")},
			PortfolioValue: money.New(500, "USD"),
		},
	}
	out := OverviewMarkdown(series)
	assert.Contains(t, out, "Portfolio Overview")
	assert.GreaterOrEqual(t, countHeadings(t, []byte(out)), 1)
}

func TestBrokerMarkdownRendersValidMarkdown(t *testing.T) {
	series := []aggregate.BrokerSnapshot{
		{
			Broker:         movement.BrokerID(1),
			Date:           date.New(2025, 1, 1),
			MainCurrency:   acctproj.Snapshot{Currency: "USD", RealizedGains: money.New(10, "USD")},
			PortfolioValue: money.New(500, "USD"),
		},
	}
	out := BrokerMarkdown("1", series)
	assert.Contains(t, out, "Broker 1")
	assert.GreaterOrEqual(t, countHeadings(t, []byte(out)), 1)
}
