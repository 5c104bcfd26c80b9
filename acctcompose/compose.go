// Package acctcompose implements the BrokerAccount Snapshot Composer (C7):
// it designates one of an account's per-currency BrokerFinancialSnapshot
// series as main, converts its portfolioValue into the main currency using
// externally supplied exchange rates, and leaves every other currency's
// financials untouched.
//
// Grounded on etnz-portfolio's snapshot.go, whose Snapshot.Convert/
// ExchangeRate pair converts a foreign-currency amount into the portfolio's
// single reporting currency using the last known rate at or before a date;
// this package applies the same convention to one account's main-currency
// roll-up instead of a whole-portfolio one.
package acctcompose

import (
	"sort"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/acctproj"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
)

// ExchangeRates supplies the last known rate (in units of main currency per
// one unit of currency) as of a date, per SPEC_FULL.md §9's extension of
// the Pricing collaborator. A missing rate is reported via the second
// return value rather than defaulting to zero, so the composer can fall
// back to leaving the currency unconverted (spec §9 option (b)) instead of
// silently treating it as worthless.
type ExchangeRates interface {
	ExchangeRate(currency string, on date.Date) (money.Money, bool)
}

// identityRates is used when no ExchangeRates is supplied: every lookup
// misses, so every non-main currency is left out of PortfolioValue and
// named in ConversionWarnings.
type identityRates struct{}

func (identityRates) ExchangeRate(string, date.Date) (money.Money, bool) { return money.Money{}, false }

// Snapshot is the BrokerAccountSnapshot entity of spec §3.
type Snapshot struct {
	Account      movement.AccountID
	Date         date.Date
	MainCurrency acctproj.Snapshot
	// OtherCurrencies holds every non-main currency's financial snapshot,
	// unconverted, sorted by currency code.
	OtherCurrencies []acctproj.Snapshot
	// PortfolioValue is the account's net worth expressed in MainCurrency's
	// currency: the main-currency financials' own net cash flow plus every
	// other currency's net cash flow converted at ExchangeRates' rate for
	// that date. A currency with no available rate is excluded and noted
	// in ConversionWarnings rather than treated as zero (spec §9).
	PortfolioValue money.Money
	// ConversionWarnings names currencies that could not be converted into
	// MainCurrency's currency on this date for lack of a rate.
	ConversionWarnings []string
}

// cursor carries forward the latest at-or-before entry of one currency's
// acctproj series, mirroring tickercompose's cursor.
type cursor struct {
	series []acctproj.Snapshot
	pos    int
	latest acctproj.Snapshot
	seen   bool
}

func (c *cursor) advanceTo(on date.Date) {
	for c.pos < len(c.series) && !c.series[c.pos].Date.After(on) {
		c.latest = c.series[c.pos]
		c.seen = true
		c.pos++
	}
}

// Compose merges one account's per-currency acctproj series into a dense
// Snapshot series, per spec §4.7. mainCurrency is the account's designated
// main currency (from config, or the caller's fallback choice); rates
// supplies cross-currency conversion for PortfolioValue. A nil rates
// defaults to treating every currency as unconvertible, so PortfolioValue
// degenerates to the main currency's own net cash flow.
func Compose(account movement.AccountID, mainCurrency string, perCurrency map[string][]acctproj.Snapshot, rates ExchangeRates) []Snapshot {
	if rates == nil {
		rates = identityRates{}
	}

	currencies := make([]string, 0, len(perCurrency))
	for c := range perCurrency {
		currencies = append(currencies, c)
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
	for _, c := range currencies {
		cursors[c] = &cursor{series: perCurrency[c]}
	}

	out := make([]Snapshot, 0, len(dates))
	for _, on := range dates {
		var main acctproj.Snapshot
		haveMain := false
		var others []acctproj.Snapshot
		portfolioValue := money.Zero(mainCurrency)
		var warnings []string

		for _, c := range currencies {
			cur := cursors[c]
			cur.advanceTo(on)
			if !cur.seen {
				continue
			}
			s := cur.latest
			if c == mainCurrency {
				main = s
				haveMain = true
				portfolioValue = portfolioValue.Add(s.NetCashFlow)
				continue
			}
			others = append(others, s)
			if rate, ok := rates.ExchangeRate(c, on); ok {
				converted := money.New(s.NetCashFlow.Decimal().Mul(rate.Decimal()), mainCurrency)
				portfolioValue = portfolioValue.Add(converted)
			} else {
				warnings = append(warnings, c)
			}
		}
		if !haveMain {
			main = acctproj.Snapshot{Account: account, Currency: mainCurrency, Date: on}
		}
		sort.Slice(others, func(i, j int) bool { return others[i].Currency < others[j].Currency })

		out = append(out, Snapshot{
			Account:            account,
			Date:               on,
			MainCurrency:       main,
			OtherCurrencies:    others,
			PortfolioValue:     portfolioValue,
			ConversionWarnings: warnings,
		})
	}
	return out
}

// SelectMainCurrency designates the account's main currency: the
// configured choice if set and present among the account's currencies,
// else the currency with the largest cumulative deposited amount (spec
// §4.7's fallback rule), else the first currency by code.
func SelectMainCurrency(configured string, perCurrency map[string][]acctproj.Snapshot) string {
	if configured != "" {
		if _, ok := perCurrency[configured]; ok {
			return configured
		}
	}
	best := ""
	bestDeposited := money.Zero("").Decimal()
	haveBest := false
	currencies := make([]string, 0, len(perCurrency))
	for c := range perCurrency {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		series := perCurrency[c]
		if len(series) == 0 {
			continue
		}
		deposited := series[len(series)-1].Deposited.Decimal()
		if !haveBest || deposited.GreaterThan(bestDeposited) {
			best = c
			bestDeposited = deposited
			haveBest = true
		}
	}
	return best
}
