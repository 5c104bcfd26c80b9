package movement

import (
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/engineerr"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
)

// OptionCode enumerates the option-leg action codes of spec §3.
type OptionCode int

const (
	BuyToOpen OptionCode = iota
	SellToOpen
	BuyToClose
	SellToClose
	Expired
	Assigned
)

func (c OptionCode) String() string {
	switch c {
	case BuyToOpen:
		return "BuyToOpen"
	case SellToOpen:
		return "SellToOpen"
	case BuyToClose:
		return "BuyToClose"
	case SellToClose:
		return "SellToClose"
	case Expired:
		return "Expired"
	case Assigned:
		return "Assigned"
	default:
		return "Unknown"
	}
}

// IsOpen reports whether the code appends a new open leg.
func (c OptionCode) IsOpen() bool { return c == BuyToOpen || c == SellToOpen }

// IsClose reports whether the code consumes open legs FIFO.
func (c OptionCode) IsClose() bool { return c == BuyToClose || c == SellToClose }

// IsTerminal reports whether the code clears all remaining open legs for
// the contract key (Expired/Assigned).
func (c OptionCode) IsTerminal() bool { return c == Expired || c == Assigned }

// OptionType distinguishes calls from puts.
type OptionType int

const (
	Call OptionType = iota
	Put
)

func (t OptionType) String() string {
	if t == Call {
		return "Call"
	}
	return "Put"
}

// ContractKey identifies the FIFO matching bucket for an option movement,
// per spec §3/§4.3: independent of direction, keyed by the contract terms.
type ContractKey struct {
	Ticker     TickerID
	Type       OptionType
	Strike     money.Money
	Expiration date.Date
}

// OptionTrade is a single option-leg movement. Grounded conceptually on the
// teacher's equity lots.go FIFO machinery (§4.3's Option Pair Matcher
// generalizes that same FIFO idea to option contract keys) since the
// teacher repo has no options support itself.
type OptionTrade struct {
	common
	TickerRef       TickerID
	Cur             string
	Code            OptionCode
	Type            OptionType
	Strike          money.Money
	Expiration      date.Date
	Quantity        money.Quantity // contracts, always positive.
	PremiumPerShare money.Money
	Multiplier      money.Quantity // defaults to 100 if zero.
	Commissions     money.Money
	Fees            money.Money
	Notes           string
}

// DefaultMultiplier is the standard option contract multiplier.
var DefaultMultiplier = money.Qty(100)

// NewOptionTrade constructs an OptionTrade with the default multiplier.
func NewOptionTrade(id MovementID, account AccountID, on date.Date, ticker TickerID, currency string, code OptionCode, typ OptionType, strike money.Money, expiration date.Date, qty money.Quantity, premiumPerShare money.Money) OptionTrade {
	return OptionTrade{
		common:          common{id: id, account: account, date: on},
		TickerRef:       ticker,
		Cur:             currency,
		Code:            code,
		Type:            typ,
		Strike:          strike,
		Expiration:      expiration,
		Quantity:        qty,
		PremiumPerShare: premiumPerShare,
		Multiplier:      DefaultMultiplier,
	}
}

func (o OptionTrade) Currency() string         { return o.Cur }
func (o OptionTrade) Ticker() (TickerID, bool) { return o.TickerRef, true }

func (o OptionTrade) effectiveMultiplier() money.Quantity {
	if o.Multiplier.IsZero() {
		return DefaultMultiplier
	}
	return o.Multiplier
}

// Key returns the contract key this movement matches against.
func (o OptionTrade) Key() ContractKey {
	return ContractKey{Ticker: o.TickerRef, Type: o.Type, Strike: o.Strike, Expiration: o.Expiration}
}

// GrossPremium is the unsigned notional premium: quantity * multiplier * premiumPerShare.
func (o OptionTrade) GrossPremium() money.Money {
	return o.PremiumPerShare.Mul(o.Quantity).Mul(o.effectiveMultiplier())
}

// NetPremium is the movement's signed cash effect before commissions/fees
// are peeled off into the account's separate counters, per spec §4.3: an
// opening-short or closing-long credits cash (we received premium); an
// opening-long or closing-short debits cash (we paid premium). Expired and
// Assigned carry no new cash premium of their own.
func (o OptionTrade) NetPremium() money.Money {
	gross := o.GrossPremium()
	switch o.Code {
	case SellToOpen, BuyToClose:
		// SellToOpen: we receive premium. BuyToClose: we pay to close a
		// short, i.e. this leg itself is a cash outflow equal to the
		// close price, which nets against the matched open credit at the
		// matcher layer; movement-grain sign follows direction of cash.
		if o.Code == SellToOpen {
			return gross
		}
		return gross.Neg()
	case BuyToOpen, SellToClose:
		if o.Code == BuyToOpen {
			return gross.Neg()
		}
		return gross
	default: // Expired, Assigned: no new premium cash flow.
		return money.Zero(o.Cur)
	}
}

// SignedAmount is the cash effect of this movement: net premium minus
// commissions and fees.
func (o OptionTrade) SignedAmount() money.Money {
	return o.NetPremium().Sub(o.Commissions).Sub(o.Fees)
}

func (o OptionTrade) Validate() error {
	if err := validateCommon(o.common); err != nil {
		return err
	}
	if !o.Code.IsTerminal() && (o.Quantity.IsNegative() || o.Quantity.IsZero()) {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: option quantity must be positive", o.id)
	}
	if o.Expiration.Before(o.date) {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: option expiration %s before trade date %s", o.id, o.Expiration, o.date)
	}
	if o.PremiumPerShare.IsNegative() {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: option premium must be non-negative", o.id)
	}
	if o.Commissions.IsNegative() || o.Fees.IsNegative() {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: commissions/fees must be non-negative", o.id)
	}
	return nil
}
