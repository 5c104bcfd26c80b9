package acctproj

import (
	"sort"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/tickerproj"
)

// Projector folds one (account, currency) pair's cash movements and
// ticker-currency aggregates into a dense Snapshot series, per spec §4.6.
type Projector struct {
	account  movement.AccountID
	currency string
	clock    func() date.Date
}

// New constructs a Projector for one (account, currency) pair.
func New(account movement.AccountID, currency string) *Projector {
	return &Projector{account: account, currency: currency, clock: date.Today}
}

// WithClock overrides the clock used for the carry-forward snapshot.
func (p *Projector) WithClock(clock func() date.Date) *Projector {
	p.clock = clock
	return p
}

// tickerCursor mirrors tickercompose's carry-forward cursor, generalized to
// any tickerproj.Snapshot series.
type tickerCursor struct {
	series []tickerproj.Snapshot
	pos    int
	latest tickerproj.Snapshot
	seen   bool
}

func (c *tickerCursor) advanceTo(on date.Date) {
	for c.pos < len(c.series) && !c.series[c.pos].Date.After(on) {
		c.latest = c.series[c.pos]
		c.seen = true
		c.pos++
	}
}

// Project folds this account-currency's cash-bearing broker movements and
// per-ticker aggregates into a dense Snapshot series.
//
// brokerMovements is every BrokerMovement belonging to this account, in any
// currency (a Conversion's debit leg may be denominated in another
// currency); tickerSeries holds, per ticker, the tickerproj series already
// computed for this account in this currency (see DESIGN.md's resolution
// of the per-account ticker-currency scoping question); allMovements is
// every movement of every variant and currency belonging to this account,
// sorted ascending by (date, id), used solely to compute the account-wide
// MovementCounter (spec §4.6: "a single integer independent of currency
// partitioning").
func (p *Projector) Project(brokerMovements []movement.BrokerMovement, tickerSeries map[movement.TickerID][]tickerproj.Snapshot, allMovements []movement.Movement) ([]Snapshot, error) {
	relevant := make([]movement.BrokerMovement, 0, len(brokerMovements))
	for _, bm := range brokerMovements {
		if bm.Currency() == p.currency || (bm.Kind == movement.Conversion && bm.FromCurrency == p.currency) {
			if err := bm.Validate(); err != nil {
				return nil, err
			}
			relevant = append(relevant, bm)
		}
	}
	sort.SliceStable(relevant, func(i, j int) bool {
		if relevant[i].Date() != relevant[j].Date() {
			return relevant[i].Date().Before(relevant[j].Date())
		}
		return relevant[i].ID() < relevant[j].ID()
	})

	tickers := make([]movement.TickerID, 0, len(tickerSeries))
	for t := range tickerSeries {
		tickers = append(tickers, t)
	}
	sort.Slice(tickers, func(i, j int) bool { return tickers[i] < tickers[j] })

	dateSet := map[date.Date]struct{}{}
	for _, bm := range relevant {
		dateSet[bm.Date()] = struct{}{}
	}
	for _, series := range tickerSeries {
		for _, s := range series {
			dateSet[s.Date] = struct{}{}
		}
	}
	dates := make([]date.Date, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	cursors := make(map[movement.TickerID]*tickerCursor, len(tickers))
	for _, t := range tickers {
		cursors[t] = &tickerCursor{series: tickerSeries[t]}
	}

	deposited := money.Zero(p.currency)
	withdrawn := money.Zero(p.currency)
	fees := money.Zero(p.currency)
	otherIncome := money.Zero(p.currency)
	transferredIn := money.Zero(p.currency)
	transferredOut := money.Zero(p.currency)
	commissions := money.Zero(p.currency)

	var out []Snapshot
	bmIdx := 0
	counterIdx := 0
	movementCounter := int64(0)
	var lastDate date.Date
	haveLast := false

	advanceCounter := func(on date.Date) {
		for counterIdx < len(allMovements) && !allMovements[counterIdx].Date().After(on) {
			movementCounter++
			counterIdx++
		}
	}

	emit := func(on date.Date) {
		invested := money.Zero(p.currency)
		realizedGains := money.Zero(p.currency)
		unrealizedGains := money.Zero(p.currency)
		optionsIncome := money.Zero(p.currency)
		dividendsReceived := money.Zero(p.currency)
		openTrades := false
		tickerCommissions := money.Zero(p.currency)
		tickerFees := money.Zero(p.currency)

		for _, t := range tickers {
			c := cursors[t]
			c.advanceTo(on)
			if !c.seen {
				continue
			}
			s := c.latest
			invested = invested.Add(s.CostBasis)
			realizedGains = realizedGains.Add(s.Realized)
			unrealizedGains = unrealizedGains.Add(s.Unrealized)
			optionsIncome = optionsIncome.Add(s.Options)
			dividendsReceived = dividendsReceived.Add(s.Dividends)
			tickerCommissions = tickerCommissions.Add(s.Commissions)
			tickerFees = tickerFees.Add(s.Fees)
			openTrades = openTrades || s.OpenTrades
		}

		totalCommissions := commissions.Add(tickerCommissions)
		totalFees := fees.Add(tickerFees)
		netCashFlow := deposited.Sub(withdrawn).Add(realizedGains).Add(optionsIncome).Add(dividendsReceived).Sub(totalCommissions).Sub(totalFees)

		out = append(out, Snapshot{
			Account:                   p.account,
			Currency:                  p.currency,
			Date:                      on,
			Deposited:                 deposited,
			Withdrawn:                 withdrawn,
			Invested:                  invested,
			RealizedGains:             realizedGains,
			UnrealizedGains:           unrealizedGains,
			Commissions:               totalCommissions,
			Fees:                      totalFees,
			OptionsIncome:             optionsIncome,
			DividendsReceived:         dividendsReceived,
			OtherIncome:               otherIncome,
			TransferredIn:             transferredIn,
			TransferredOut:            transferredOut,
			OpenTrades:                openTrades,
			MovementCounter:           movementCounter,
			RealizedPercentage:        money.Ratio(realizedGains, deposited),
			UnrealizedGainsPercentage: money.Ratio(unrealizedGains, deposited),
			NetCashFlow:               netCashFlow,
		})
	}

	for _, on := range dates {
		for bmIdx < len(relevant) && relevant[bmIdx].Date() == on {
			bm := relevant[bmIdx]
			applyBrokerMovement(bm, p.currency, &deposited, &withdrawn, &fees, &otherIncome, &transferredIn, &transferredOut, &commissions)
			bmIdx++
		}
		advanceCounter(on)
		emit(on)
		lastDate = on
		haveLast = true
	}

	today := p.clock()
	if !haveLast || today.After(lastDate) {
		advanceCounter(today)
		emit(today)
	}
	return out, nil
}

// applyBrokerMovement folds one broker movement into the running counters.
// Commissions/fees are denominated in the credit leg's currency by
// convention, so they are only added on that side — a Conversion's debit
// leg (processed by the FromCurrency's own Projector instance) never
// double-counts them.
func applyBrokerMovement(bm movement.BrokerMovement, currency string, deposited, withdrawn, fees, otherIncome, transferredIn, transferredOut, commissions *money.Money) {
	creditLeg := bm.Currency() == currency
	if creditLeg {
		*commissions = commissions.Add(bm.Commissions)
		*fees = fees.Add(bm.Fees)
	}
	switch bm.Kind {
	case movement.Deposit:
		if creditLeg {
			*deposited = deposited.Add(bm.Amount)
		}
	case movement.Withdrawal:
		if creditLeg {
			*withdrawn = withdrawn.Add(bm.Amount)
		}
	case movement.Fee:
		if creditLeg {
			*fees = fees.Add(bm.Amount)
		}
	case movement.Interest:
		if creditLeg {
			*otherIncome = otherIncome.Add(bm.Amount)
		}
	case movement.BalanceAdjustment:
		if creditLeg {
			*otherIncome = otherIncome.Add(bm.Amount)
		}
	case movement.ACATIn:
		if creditLeg {
			*transferredIn = transferredIn.Add(bm.Amount)
		}
	case movement.ACATOut:
		if creditLeg {
			*transferredOut = transferredOut.Add(bm.Amount)
		}
	case movement.Conversion:
		if creditLeg {
			*transferredIn = transferredIn.Add(bm.Amount)
		}
		if bm.FromCurrency == currency {
			*transferredOut = transferredOut.Add(bm.AmountChanged)
		}
	}
}
