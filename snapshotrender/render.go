// Package snapshotrender turns snapshot series into Markdown reports, for
// display by cmd/snapshotctl. Grounded on etnz-portfolio's renderer
// package (renderer/summary.go, renderer/holding.go): one function per
// report, building a github.com/nao1215/markdown document and returning
// its rendered string.
package snapshotrender

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/acctcompose"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/aggregate"
)

// AccountMarkdown renders one account's BrokerAccountSnapshot series as a
// Markdown table, most recent snapshot first.
func AccountMarkdown(account string, series []acctcompose.Snapshot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Account %s", account))

	if len(series) == 0 {
		doc.PlainText("No snapshots available.")
		return doc.String()
	}

	doc.H2("Portfolio Value (" + series[len(series)-1].MainCurrency.Currency + ")")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Date", "Portfolio Value", "Deposited", "Realized Gains"},
	}
	for i := len(series) - 1; i >= 0; i-- {
		s := series[i]
		table.Rows = append(table.Rows, []string{
			s.Date.String(),
			s.PortfolioValue.String(),
			s.MainCurrency.Deposited.String(),
			s.MainCurrency.RealizedGains.String(),
		})
	}
	doc.Table(table)

	if warnings := series[len(series)-1].ConversionWarnings; len(warnings) > 0 {
		doc.H2("Conversion Warnings")
		for _, w := range warnings {
			doc.PlainText("- " + w)
		}
	}

	return doc.String()
}

// OverviewMarkdown renders the whole-portfolio InvestmentOverviewSnapshot
// series as a Markdown table, most recent snapshot first.
func OverviewMarkdown(series []aggregate.OverviewSnapshot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Portfolio Overview")

	if len(series) == 0 {
		doc.PlainText("No snapshots available.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Date", "Portfolio Value", "Realized Gains"},
	}
	for i := len(series) - 1; i >= 0; i-- {
		s := series[i]
		table.Rows = append(table.Rows, []string{
			s.Date.String(),
			s.PortfolioValue.String(),
			s.MainCurrency.RealizedGains.String(),
		})
	}
	doc.Table(table)

	return doc.String()
}

// BrokerMarkdown renders one broker's BrokerSnapshot series as a Markdown
// table, most recent snapshot first.
func BrokerMarkdown(broker string, series []aggregate.BrokerSnapshot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Broker %s", broker))

	if len(series) == 0 {
		doc.PlainText("No snapshots available.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Date", "Portfolio Value", "Realized Gains"},
	}
	for i := len(series) - 1; i >= 0; i-- {
		s := series[i]
		table.Rows = append(table.Rows, []string{
			s.Date.String(),
			s.PortfolioValue.String(),
			s.MainCurrency.RealizedGains.String(),
		})
	}
	doc.Table(table)

	return doc.String()
}
