// Package tickercompose implements the Ticker Snapshot Composer (C5): it
// merges the per-currency series produced by tickerproj (C4) into one
// dense, cross-currency TickerSnapshot series per ticker.
//
// Grounded on etnz-portfolio's reports_holding.go, which assembles a
// HoldingReport by walking every security's per-currency figures and
// rolling them into one reporting-currency view; this package keeps the
// per-currency figures instead of converting them, per spec §3's
// TickerSnapshot shape (mainCurrency + otherCurrencies, not a converted
// total).
package tickercompose

import (
	"sort"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/tickerproj"
)

// Snapshot is the TickerSnapshot entity of spec §3.
type Snapshot struct {
	Ticker          movement.TickerID
	Date            date.Date
	MainCurrency    tickerproj.Snapshot
	OtherCurrencies []tickerproj.Snapshot
}

// cursor walks one currency's ascending snapshot series, tracking the
// latest entry at-or-before the date being composed (carry-forward read,
// not a new snapshot).
type cursor struct {
	series []tickerproj.Snapshot
	pos    int // index of the next not-yet-consumed entry.
	latest tickerproj.Snapshot
	seen   bool
}

func (c *cursor) advanceTo(on date.Date) {
	for c.pos < len(c.series) && !c.series[c.pos].Date.After(on) {
		c.latest = c.series[c.pos]
		c.seen = true
		c.pos++
	}
}

// Compose merges per-currency tickerproj series into a dense TickerSnapshot
// series, per spec §4.5. mainCurrency is the account's designated main
// currency; when no entry exists yet for it at a given date, the currency
// carrying the highest costBasis is used instead (ties broken by currency
// code ascending), per §4.5's tie-break rule.
func Compose(ticker movement.TickerID, mainCurrency string, perCurrency map[string][]tickerproj.Snapshot) []Snapshot {
	currencies := make([]string, 0, len(perCurrency))
	for ccy := range perCurrency {
		currencies = append(currencies, ccy)
	}
	sort.Strings(currencies)

	dateSet := map[date.Date]struct{}{}
	for _, series := range perCurrency {
		for _, s := range series {
			dateSet[s.Date] = struct{}{}
		}
	}
	dates := make([]date.Date, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	cursors := make(map[string]*cursor, len(currencies))
	for _, ccy := range currencies {
		cursors[ccy] = &cursor{series: perCurrency[ccy]}
	}

	out := make([]Snapshot, 0, len(dates))
	for _, d := range dates {
		present := make([]tickerproj.Snapshot, 0, len(currencies))
		for _, ccy := range currencies {
			c := cursors[ccy]
			c.advanceTo(d)
			if c.seen {
				present = append(present, c.latest)
			}
		}
		if len(present) == 0 {
			continue
		}

		mainIdx := selectMain(present, mainCurrency)
		main := present[mainIdx]
		others := make([]tickerproj.Snapshot, 0, len(present)-1)
		for i, s := range present {
			if i == mainIdx {
				continue
			}
			others = append(others, s)
		}
		sort.Slice(others, func(i, j int) bool { return others[i].Currency < others[j].Currency })

		main, others = withWeights(main, others)

		out = append(out, Snapshot{Ticker: ticker, Date: d, MainCurrency: main, OtherCurrencies: others})
	}
	return out
}

// selectMain picks the index within present matching mainCurrency; if
// absent, falls back to the highest-costBasis entry, ties broken by
// currency code ascending.
func selectMain(present []tickerproj.Snapshot, mainCurrency string) int {
	for i, s := range present {
		if s.Currency == mainCurrency {
			return i
		}
	}
	best := 0
	for i := 1; i < len(present); i++ {
		// Compare raw amounts: the entries carry different currencies.
		cb := present[i].CostBasis.Abs().Decimal()
		bestCB := present[best].CostBasis.Abs().Decimal()
		switch {
		case cb.GreaterThan(bestCB):
			best = i
		case cb.Equal(bestCB) && present[i].Currency < present[best].Currency:
			best = i
		}
	}
	return best
}

// withWeights computes each currency's weight as RiskBase / Σ RiskBase
// across all currencies present at this date, per spec §4.5. A zero total
// yields zero weight for every currency.
func withWeights(main tickerproj.Snapshot, others []tickerproj.Snapshot) (tickerproj.Snapshot, []tickerproj.Snapshot) {
	// RiskBase amounts of different currencies are summed as raw decimals.
	totalValue := main.RiskBase.Decimal()
	for _, o := range others {
		totalValue = totalValue.Add(o.RiskBase.Decimal())
	}
	total := money.New(totalValue, "")
	main.Weight = weightOf(main.RiskBase, total)
	for i := range others {
		others[i].Weight = weightOf(others[i].RiskBase, total)
	}
	return main, others
}

func weightOf(riskBase, total money.Money) money.Percent {
	return money.Ratio(riskBase, total)
}
