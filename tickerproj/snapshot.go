// Package tickerproj implements the TickerCurrency Projector (C4): a pure
// fold of one (ticker, currency) slice's movements into a dense, dated
// series of Snapshots.
//
// Grounded on etnz-portfolio's accounting.go/holding.go fold pattern (an
// ordered walk over a ledger accumulating running totals at each date) and
// on lots.go's average-cost/FIFO cost-basis machinery, generalized here to
// also carry option accounting via the optionmatch package.
package tickerproj

import (
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
)

// Snapshot is the TickerCurrencySnapshot entity of spec §3.
type Snapshot struct {
	Ticker       movement.TickerID
	Currency     string
	Date         date.Date
	TotalShares  money.Quantity
	Weight       money.Percent // always zero here; computed by the composer (C5).
	CostBasis    money.Money
	RealCost     money.Money // average cost per share of the current holding.
	Dividends    money.Money
	Options      money.Money
	TotalIncomes money.Money
	Unrealized   money.Money
	Realized     money.Money
	Performance  money.Performance
	LatestPrice  money.Money
	OpenTrades   bool
	// RiskBase is |costBasis| + Σ|open-leg premium|, the capital-at-risk
	// denominator shared by Performance (C4) and the composer's weight
	// computation (C5), exposed so the composer never needs to re-derive it.
	RiskBase money.Money
	// Commissions/Fees accumulate every Trade and OptionTrade's commission
	// and fee fields, surfaced so the BrokerAccount Financial Projector
	// (C6) can roll them into its own counters without re-walking the raw
	// movement log.
	Commissions money.Money
	Fees        money.Money
}
