// Package aggregate implements the Broker/Overview Aggregator (C8): it
// rolls up an account-level BrokerAccountSnapshot series (C7) into
// BrokerSnapshot series, and broker-level series into one
// InvestmentOverviewSnapshot series, by linear addition per currency.
//
// Grounded on etnz-portfolio's reports_holding.go/reports_position.go
// roll-up style (sum each constituent's per-currency figures into a
// parent total) generalized one level further than the teacher ever
// does: the teacher has no broker/overview tier, only portfolio-wide
// totals, so the two-level roll-up here (accounts→broker, brokers→
// overview) is built from spec §4.8's "aggregate likewise" instruction
// applied twice over the same linear-addition rule.
package aggregate

import (
	"sort"
	"strconv"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/acctcompose"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/acctproj"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
)

// noRates is the default when no ExchangeRates collaborator is supplied:
// every lookup misses, so roll-ups fall back to leaving non-main
// currencies unconverted and warning about it (spec §9 option (b)).
type noRates struct{}

func (noRates) ExchangeRate(string, date.Date) (money.Money, bool) { return money.Money{}, false }

// ExchangeRates is the same collaborator acctcompose uses, reused here so
// the broker and overview tiers convert currencies with the same rate
// source as the account tier.
type ExchangeRates = acctcompose.ExchangeRates

// BrokerSnapshot is the BrokerSnapshot entity of spec §3: one broker's
// accounts aggregated at a date.
type BrokerSnapshot struct {
	Broker             movement.BrokerID
	Date               date.Date
	MainCurrency       acctproj.Snapshot
	OtherCurrencies    []acctproj.Snapshot
	PortfolioValue     money.Money
	ConversionWarnings []string
}

// OverviewSnapshot is the InvestmentOverviewSnapshot entity of spec §3:
// every broker aggregated at a date.
type OverviewSnapshot struct {
	Date               date.Date
	MainCurrency       acctproj.Snapshot
	OtherCurrencies    []acctproj.Snapshot
	PortfolioValue     money.Money
	ConversionWarnings []string
}

// cursor carries forward the latest at-or-before entry of one series,
// generalized over the element type so every roll-up tier in this package
// shares one implementation instead of a fourth hand-copied variant.
type cursor[T any] struct {
	series []T
	dateOf func(T) date.Date
	pos    int
	latest T
	seen   bool
}

func newCursor[T any](series []T, dateOf func(T) date.Date) *cursor[T] {
	return &cursor[T]{series: series, dateOf: dateOf}
}

func (c *cursor[T]) advanceTo(on date.Date) {
	for c.pos < len(c.series) && !c.dateOf(c.series[c.pos]).After(on) {
		c.latest = c.series[c.pos]
		c.seen = true
		c.pos++
	}
}

// addFinancials sums two same-currency acctproj.Snapshot totals linearly,
// per spec §4.8's "linear addition per currency" rule. Percentages are not
// additive; they are recomputed by the caller once the roll-up is final.
func addFinancials(a, b acctproj.Snapshot) acctproj.Snapshot {
	return acctproj.Snapshot{
		Currency:          a.Currency,
		Deposited:         a.Deposited.Add(b.Deposited),
		Withdrawn:         a.Withdrawn.Add(b.Withdrawn),
		Invested:          a.Invested.Add(b.Invested),
		RealizedGains:     a.RealizedGains.Add(b.RealizedGains),
		UnrealizedGains:   a.UnrealizedGains.Add(b.UnrealizedGains),
		Commissions:       a.Commissions.Add(b.Commissions),
		Fees:              a.Fees.Add(b.Fees),
		OptionsIncome:     a.OptionsIncome.Add(b.OptionsIncome),
		DividendsReceived: a.DividendsReceived.Add(b.DividendsReceived),
		OtherIncome:       a.OtherIncome.Add(b.OtherIncome),
		TransferredIn:     a.TransferredIn.Add(b.TransferredIn),
		TransferredOut:    a.TransferredOut.Add(b.TransferredOut),
		OpenTrades:        a.OpenTrades || b.OpenTrades,
		MovementCounter:   a.MovementCounter + b.MovementCounter,
		NetCashFlow:       a.NetCashFlow.Add(b.NetCashFlow),
	}
}

func zeroFinancials(currency string) acctproj.Snapshot {
	return acctproj.Snapshot{
		Currency:          currency,
		Deposited:         money.Zero(currency),
		Withdrawn:         money.Zero(currency),
		Invested:          money.Zero(currency),
		RealizedGains:     money.Zero(currency),
		UnrealizedGains:   money.Zero(currency),
		Commissions:       money.Zero(currency),
		Fees:              money.Zero(currency),
		OptionsIncome:     money.Zero(currency),
		DividendsReceived: money.Zero(currency),
		OtherIncome:       money.Zero(currency),
		TransferredIn:     money.Zero(currency),
		TransferredOut:    money.Zero(currency),
		NetCashFlow:       money.Zero(currency),
	}
}

func finalizePercentages(s acctproj.Snapshot) acctproj.Snapshot {
	s.RealizedPercentage = money.Ratio(s.RealizedGains, s.Deposited)
	s.UnrealizedGainsPercentage = money.Ratio(s.UnrealizedGains, s.Deposited)
	return s
}

// constituent is the common shape of one roll-up input, satisfied by
// acctcompose.Snapshot (account tier) and BrokerSnapshot (broker tier).
type constituent struct {
	date              date.Date
	mainCurrency      acctproj.Snapshot
	otherCurrencies   []acctproj.Snapshot
	portfolioValue    money.Money
	hasPortfolioValue bool
}

// rollUp merges a set of per-key dense constituent series into one parent
// series, bucketing every currency present across every constituent and
// summing linearly, then converting each constituent's own portfolioValue
// into mainCurrency for the parent's PortfolioValue.
func rollUp(mainCurrency string, perKey map[string][]constituent, rates ExchangeRates) []struct {
	date               date.Date
	main               acctproj.Snapshot
	others             []acctproj.Snapshot
	portfolioValue     money.Money
	conversionWarnings []string
} {
	if rates == nil {
		rates = noRates{}
	}

	keys := make([]string, 0, len(perKey))
	dateSet := map[date.Date]struct{}{}
	for k, series := range perKey {
		keys = append(keys, k)
		for _, c := range series {
			dateSet[c.date] = struct{}{}
		}
	}
	sort.Strings(keys)
	dates := make([]date.Date, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	cursors := make(map[string]*cursor[constituent], len(keys))
	for _, k := range keys {
		series := perKey[k]
		cursors[k] = newCursor(series, func(c constituent) date.Date { return c.date })
	}

	out := make([]struct {
		date               date.Date
		main               acctproj.Snapshot
		others             []acctproj.Snapshot
		portfolioValue     money.Money
		conversionWarnings []string
	}, 0, len(dates))

	for _, on := range dates {
		totals := map[string]acctproj.Snapshot{}
		portfolioValue := money.Zero(mainCurrency)
		var warnings []string

		for _, k := range keys {
			cur := cursors[k]
			cur.advanceTo(on)
			if !cur.seen {
				continue
			}
			c := cur.latest
			all := append([]acctproj.Snapshot{c.mainCurrency}, c.otherCurrencies...)
			for _, s := range all {
				if s.Currency == "" {
					continue
				}
				existing, ok := totals[s.Currency]
				if !ok {
					existing = zeroFinancials(s.Currency)
				}
				totals[s.Currency] = addFinancials(existing, s)
			}
			if !c.hasPortfolioValue {
				continue
			}
			if c.portfolioValue.Currency() == mainCurrency {
				portfolioValue = portfolioValue.Add(c.portfolioValue)
				continue
			}
			if rate, ok := rates.ExchangeRate(c.portfolioValue.Currency(), on); ok {
				converted := money.New(c.portfolioValue.Decimal().Mul(rate.Decimal()), mainCurrency)
				portfolioValue = portfolioValue.Add(converted)
			} else {
				warnings = append(warnings, k)
			}
		}

		main, ok := totals[mainCurrency]
		if !ok {
			main = zeroFinancials(mainCurrency)
		}
		main = finalizePercentages(main)

		currencies := make([]string, 0, len(totals))
		for c := range totals {
			if c != mainCurrency {
				currencies = append(currencies, c)
			}
		}
		sort.Strings(currencies)
		others := make([]acctproj.Snapshot, 0, len(currencies))
		for _, c := range currencies {
			others = append(others, finalizePercentages(totals[c]))
		}

		out = append(out, struct {
			date               date.Date
			main               acctproj.Snapshot
			others             []acctproj.Snapshot
			portfolioValue     money.Money
			conversionWarnings []string
		}{date: on, main: main, others: others, portfolioValue: portfolioValue, conversionWarnings: warnings})
	}
	return out
}

// ComposeBroker rolls up a broker's accounts (already composed by C7) into
// a dense BrokerSnapshot series, per spec §4.8.
func ComposeBroker(broker movement.BrokerID, mainCurrency string, perAccount map[movement.AccountID][]acctcompose.Snapshot, rates ExchangeRates) []BrokerSnapshot {
	perKey := make(map[string][]constituent, len(perAccount))
	for acct, series := range perAccount {
		cs := make([]constituent, len(series))
		for i, s := range series {
			cs[i] = constituent{
				date:              s.Date,
				mainCurrency:      s.MainCurrency,
				otherCurrencies:   s.OtherCurrencies,
				portfolioValue:    s.PortfolioValue,
				hasPortfolioValue: true,
			}
		}
		perKey[accountKey(acct)] = cs
	}
	rolled := rollUp(mainCurrency, perKey, rates)
	out := make([]BrokerSnapshot, 0, len(rolled))
	for _, r := range rolled {
		out = append(out, BrokerSnapshot{
			Broker:             broker,
			Date:               r.date,
			MainCurrency:       r.main,
			OtherCurrencies:    r.others,
			PortfolioValue:     r.portfolioValue,
			ConversionWarnings: r.conversionWarnings,
		})
	}
	return out
}

// ComposeOverview rolls up every broker into a dense OverviewSnapshot
// series, per spec §4.8. The overview's currency set is the union of
// every broker's currencies, matching the spec's literal wording.
func ComposeOverview(mainCurrency string, perBroker map[movement.BrokerID][]BrokerSnapshot, rates ExchangeRates) []OverviewSnapshot {
	perKey := make(map[string][]constituent, len(perBroker))
	for broker, series := range perBroker {
		cs := make([]constituent, len(series))
		for i, s := range series {
			cs[i] = constituent{
				date:              s.Date,
				mainCurrency:      s.MainCurrency,
				otherCurrencies:   s.OtherCurrencies,
				portfolioValue:    s.PortfolioValue,
				hasPortfolioValue: true,
			}
		}
		perKey[brokerKey(broker)] = cs
	}
	rolled := rollUp(mainCurrency, perKey, rates)
	out := make([]OverviewSnapshot, 0, len(rolled))
	for _, r := range rolled {
		out = append(out, OverviewSnapshot{
			Date:               r.date,
			MainCurrency:       r.main,
			OtherCurrencies:    r.others,
			PortfolioValue:     r.portfolioValue,
			ConversionWarnings: r.conversionWarnings,
		})
	}
	return out
}

func accountKey(a movement.AccountID) string { return "a" + strconv.FormatInt(int64(a), 10) }
func brokerKey(b movement.BrokerID) string   { return "b" + strconv.FormatInt(int64(b), 10) }
