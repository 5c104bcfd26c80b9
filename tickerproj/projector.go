package tickerproj

import (
	"github.com/hashicorp/go-multierror"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/optionmatch"
)

// PriceSource supplies the latest known price for a ticker as of a date, per
// spec §6's "pricing source" collaborator contract.
type PriceSource interface {
	LatestPrice(ticker movement.TickerID, on date.Date) (money.Money, bool)
}

// Clock supplies the current date, per spec §6's clock collaborator.
type Clock interface {
	Today() date.Date
}

// Option configures a Projector, following the functional-options pattern.
type Option func(*Projector)

// WithCostBasisMethod selects the equity cost-basis policy. Default:
// AverageCost.
func WithCostBasisMethod(m CostBasisMethod) Option {
	return func(p *Projector) { p.method = m }
}

// WithPriceSource supplies a price lookup; omitted prices default to zero,
// per spec §6 ("missing price ⇒ zero").
func WithPriceSource(src PriceSource) Option {
	return func(p *Projector) { p.prices = src }
}

// WithClock overrides the clock used for the carry-forward snapshot.
// Defaults to date.Today.
func WithClock(c Clock) Option {
	return func(p *Projector) { p.clock = c }
}

// WithStrictOptionMatching toggles the option matcher's strict mode, per
// spec §4.3's permissive-vs-strict distinction. Default: permissive (false).
func WithStrictOptionMatching(strict bool) Option {
	return func(p *Projector) { p.strict = strict }
}

// WithPairingMode selects the option matcher's realized/unrealized split
// convention. Default: optionmatch.Matched.
func WithPairingMode(mode optionmatch.PairingMode) Option {
	return func(p *Projector) { p.pairingMode = mode }
}

type systemClock struct{}

func (systemClock) Today() date.Date { return date.Today() }

type zeroPrices struct{}

func (zeroPrices) LatestPrice(movement.TickerID, date.Date) (money.Money, bool) {
	return money.Money{}, false
}

// Projector folds one (ticker, currency) slice of movements into a dense
// Snapshot series, per spec §4.4.
type Projector struct {
	ticker      movement.TickerID
	currency    string
	method      CostBasisMethod
	prices      PriceSource
	clock       Clock
	strict      bool
	pairingMode optionmatch.PairingMode
}

// New constructs a Projector for one (ticker, currency) slice.
func New(ticker movement.TickerID, currency string, opts ...Option) *Projector {
	p := &Projector{
		ticker:   ticker,
		currency: currency,
		method:   AverageCost,
		prices:   zeroPrices{},
		clock:    systemClock{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Project folds movements into a dense Snapshot series. movements MUST
// already be restricted to this (ticker, currency) and sorted ascending by
// (date, id); the projector trusts its caller for ordering, per spec §4.3's
// tie-break rule applied identically here.
func (p *Projector) Project(movements []movement.Movement) ([]Snapshot, error) {
	equity := newEquityLedger(p.method, p.currency)
	matcher := optionmatch.New(p.currency, p.strict, p.pairingMode)

	dividends := money.Zero(p.currency)
	options := money.Zero(p.currency)
	equityRealized := money.Zero(p.currency)
	optionRealized := money.Zero(p.currency)
	commissions := money.Zero(p.currency)
	fees := money.Zero(p.currency)

	var snapshots []Snapshot
	var lastDate date.Date
	haveLast := false
	var strictFlags *multierror.Error

	emit := func(on date.Date) {
		unrealized := matcher.GrandTotalOpenPremium()
		totalIncomes := optionRealized.Add(unrealized).Add(dividends)
		realized := equityRealized.Add(optionRealized)
		denom := equity.costBasis.Abs().Add(matcher.TotalAbsOpenPremium())
		price, _ := p.prices.LatestPrice(p.ticker, on)

		snapshots = append(snapshots, Snapshot{
			Ticker:       p.ticker,
			Currency:     p.currency,
			Date:         on,
			TotalShares:  equity.totalShares,
			CostBasis:    equity.costBasis,
			RealCost:     equity.realCost(),
			Dividends:    dividends,
			Options:      options,
			TotalIncomes: totalIncomes,
			Unrealized:   unrealized,
			Realized:     realized,
			Performance:  money.PerformanceOf(totalIncomes, denom),
			LatestPrice:  price,
			OpenTrades:   matcher.HasOpenLegs() || equity.totalShares.IsPositive(),
			RiskBase:     denom,
			Commissions:  commissions,
			Fees:         fees,
		})
	}

	i := 0
	for i < len(movements) {
		on := movements[i].Date()
		j := i
		for j < len(movements) && movements[j].Date() == on {
			flag, err := applyMovement(movements[j], equity, matcher, &dividends, &options, &equityRealized, &optionRealized, &commissions, &fees)
			if err != nil {
				return nil, err
			}
			if flag != nil {
				strictFlags = multierror.Append(strictFlags, flag)
			}
			j++
		}
		emit(on)
		lastDate = on
		haveLast = true
		i = j
	}

	today := p.clock.Today()
	if !haveLast || today.After(lastDate) {
		emit(today)
	}
	return snapshots, strictFlags.ErrorOrNil()
}

// applyMovement folds one movement into the running ledgers. Its first
// return value is a non-aborting strict-mode flag (ContractKeyMismatch or
// UnmatchedClose, per spec §4.3); its error return is an aborting failure
// (a malformed movement), per spec §7's propagation policy.
func applyMovement(m movement.Movement, equity *equityLedger, matcher *optionmatch.Matcher, dividends, options, equityRealized, optionRealized, commissions, fees *money.Money) (error, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	switch mv := m.(type) {
	case movement.Trade:
		gross := mv.Gross()
		*commissions = commissions.Add(mv.Commissions)
		*fees = fees.Add(mv.Fees)
		switch mv.TradeSide {
		case movement.Buy:
			cost := gross.Add(mv.Commissions).Add(mv.Fees)
			equity.buy(mv.Date(), mv.Quantity, cost)
		default: // Sell
			costOfSold := equity.sell(mv.Quantity)
			realizedDelta := gross.Sub(costOfSold).Sub(mv.Commissions).Sub(mv.Fees)
			*equityRealized = equityRealized.Add(realizedDelta)
		}
	case movement.OptionTrade:
		net := mv.NetPremium()
		*options = options.Add(net)
		*commissions = commissions.Add(mv.Commissions)
		*fees = fees.Add(mv.Fees)
		result, flag := matcher.Apply(mv)
		*optionRealized = optionRealized.Add(result.RealizedDelta)
		return flag, nil
	case movement.Dividend:
		*dividends = dividends.Add(mv.Amount)
	case movement.DividendTax:
		*dividends = dividends.Sub(mv.Amount)
	case movement.DividendDate:
		// scheduling fact only; no cash or position effect.
	case movement.Split:
		equity.applySplit(mv.Ratio())
	}
	return nil, nil
}
