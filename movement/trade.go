package movement

import (
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/engineerr"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
)

// Side distinguishes an equity trade's direction.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "Buy"
	}
	return "Sell"
}

// Trade is an equity buy/sell movement. Grounded on transactions.go's
// Buy/Sell structs, unified into a single tagged Side.
type Trade struct {
	common
	TickerRef     TickerID
	Cur           string
	TradeSide     Side
	Quantity      money.Quantity
	PricePerShare money.Money
	Commissions   money.Money
	Fees          money.Money
}

// NewTrade constructs a Trade.
func NewTrade(id MovementID, account AccountID, on date.Date, ticker TickerID, currency string, side Side, qty money.Quantity, price money.Money) Trade {
	return Trade{
		common:        common{id: id, account: account, date: on},
		TickerRef:     ticker,
		Cur:           currency,
		TradeSide:     side,
		Quantity:      qty,
		PricePerShare: price,
	}
}

func (t Trade) Currency() string         { return t.Cur }
func (t Trade) Ticker() (TickerID, bool) { return t.TickerRef, true }

// Gross is the unsigned notional: quantity * price.
func (t Trade) Gross() money.Money { return t.PricePerShare.Mul(t.Quantity) }

// SignedAmount is the movement's net cash effect: a Buy debits cash by the
// gross cost plus commissions/fees; a Sell credits cash by the gross
// proceeds minus commissions/fees.
func (t Trade) SignedAmount() money.Money {
	gross := t.Gross()
	switch t.TradeSide {
	case Buy:
		return gross.Add(t.Commissions).Add(t.Fees).Neg()
	default: // Sell
		return gross.Sub(t.Commissions).Sub(t.Fees)
	}
}

func (t Trade) Validate() error {
	if err := validateCommon(t.common); err != nil {
		return err
	}
	if t.Quantity.IsNegative() || t.Quantity.IsZero() {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: trade quantity must be positive", t.id)
	}
	if t.PricePerShare.IsNegative() {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: trade price must be non-negative", t.id)
	}
	if t.Commissions.IsNegative() || t.Fees.IsNegative() {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: commissions/fees must be non-negative", t.id)
	}
	return nil
}
