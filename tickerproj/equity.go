package tickerproj

import (
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
)

// CostBasisMethod selects the equity cost-basis policy, per spec §9's open
// question ("the source appears to use average-cost; implementers should
// parameterize the basis policy").
type CostBasisMethod int

const (
	// AverageCost is the default: realCost is the running average purchase
	// price of the current holding.
	AverageCost CostBasisMethod = iota
	// FIFO tracks individual purchase lots and consumes them oldest-first
	// on a sell, grounded on etnz-portfolio's lots.go.
	FIFO
)

// equityLot is one FIFO purchase lot. Grounded on lots.go's lot struct,
// generalized from float64 to money.Quantity/money.Money.
type equityLot struct {
	Date     date.Date
	Quantity money.Quantity
	Cost     money.Money
}

// equityLedger tracks one ticker-currency's equity position under either
// cost-basis policy.
type equityLedger struct {
	method      CostBasisMethod
	currency    string
	totalShares money.Quantity
	costBasis   money.Money
	lots        []equityLot
}

func newEquityLedger(method CostBasisMethod, currency string) *equityLedger {
	return &equityLedger{
		method:      method,
		currency:    currency,
		totalShares: money.Qty(0),
		costBasis:   money.Zero(currency),
	}
}

// realCost returns the average cost per currently-held share, or zero if
// flat.
func (e *equityLedger) realCost() money.Money {
	if e.totalShares.IsZero() {
		return money.Zero(e.currency)
	}
	return e.costBasis.DivQty(e.totalShares)
}

// buy adds shares to the position. cost is the total lot cost, including
// commissions/fees (spec §4.4: "costBasis += q·price + fees + commissions").
func (e *equityLedger) buy(on date.Date, qty money.Quantity, cost money.Money) {
	e.totalShares = e.totalShares.Add(qty)
	e.costBasis = e.costBasis.Add(cost)
	if e.method == FIFO {
		e.lots = append(e.lots, equityLot{Date: on, Quantity: qty, Cost: cost})
	}
}

// sell removes qty shares from the position and returns the cost basis of
// the shares sold, per the configured method.
func (e *equityLedger) sell(qty money.Quantity) money.Money {
	var costOfSold money.Money
	switch e.method {
	case FIFO:
		costOfSold = e.fifoCostOfSelling(qty)
		e.lots = sellLots(e.lots, qty)
	default: // AverageCost
		costOfSold = e.averageCostOfSelling(qty)
	}

	e.totalShares = e.totalShares.Sub(qty)
	e.costBasis = e.costBasis.Sub(costOfSold)

	// When totalShares crosses zero within tolerance, reset to exactly
	// zero per spec §4.4.
	if !e.totalShares.IsPositive() {
		e.totalShares = money.Qty(0)
		e.costBasis = money.Zero(e.currency)
		e.lots = nil
	}
	return costOfSold
}

// averageCostOfSelling mirrors lots.go's averageCostOfSelling, generalized
// to operate on the ledger's running totals rather than a lot slice (the
// average-cost method never needs individual lots).
func (e *equityLedger) averageCostOfSelling(qty money.Quantity) money.Money {
	if e.totalShares.IsZero() {
		return money.Zero(e.currency)
	}
	return e.costBasis.Mul(qty).DivQty(e.totalShares)
}

// fifoCostOfSelling mirrors lots.go's fifoCostOfSelling exactly, generalized
// to money.Money/money.Quantity.
func (e *equityLedger) fifoCostOfSelling(qty money.Quantity) money.Money {
	remaining := qty
	cost := money.Zero(e.currency)
	for _, l := range e.lots {
		if l.Quantity.GreaterThan(remaining) {
			fraction := remaining.Div(l.Quantity)
			cost = cost.Add(l.Cost.MulScalar(fraction.Decimal()))
			return cost
		}
		cost = cost.Add(l.Cost)
		remaining = remaining.Sub(l.Quantity)
	}
	return cost
}

// sellLots mirrors lots.go's sell method exactly, generalized to
// money.Money/money.Quantity.
func sellLots(lots []equityLot, qtyToSell money.Quantity) []equityLot {
	var remainingLots []equityLot
	for _, l := range lots {
		if qtyToSell.IsZero() {
			remainingLots = append(remainingLots, l)
			continue
		}
		if l.Quantity.GreaterThan(qtyToSell) {
			fraction := qtyToSell.Div(l.Quantity)
			soldCost := l.Cost.MulScalar(fraction.Decimal())
			remainingLots = append(remainingLots, equityLot{
				Date:     l.Date,
				Quantity: l.Quantity.Sub(qtyToSell),
				Cost:     l.Cost.Sub(soldCost),
			})
			qtyToSell = money.Qty(0)
		} else {
			qtyToSell = qtyToSell.Sub(l.Quantity)
		}
	}
	return remainingLots
}

// applySplit adjusts the held quantity by a split ratio without touching
// cost basis (a split is non-cash), per SPEC_FULL.md's supplemented stock
// split feature.
func (e *equityLedger) applySplit(ratio money.Quantity) {
	e.totalShares = e.totalShares.Mul(ratio)
	for i := range e.lots {
		e.lots[i].Quantity = e.lots[i].Quantity.Mul(ratio)
	}
}
