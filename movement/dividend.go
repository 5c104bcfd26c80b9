package movement

import (
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/engineerr"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
)

// Dividend is a cash dividend received for a ticker.
type Dividend struct {
	common
	TickerRef TickerID
	Cur       string
	Amount    money.Money // non-negative.
}

func NewDividend(id MovementID, account AccountID, on date.Date, ticker TickerID, amount money.Money) Dividend {
	return Dividend{common: common{id: id, account: account, date: on}, TickerRef: ticker, Cur: amount.Currency(), Amount: amount}
}

func (d Dividend) Currency() string          { return d.Cur }
func (d Dividend) Ticker() (TickerID, bool)  { return d.TickerRef, true }
func (d Dividend) SignedAmount() money.Money { return d.Amount }
func (d Dividend) Validate() error {
	if err := validateCommon(d.common); err != nil {
		return err
	}
	if d.Amount.IsNegative() {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: dividend amount must be non-negative", d.id)
	}
	return nil
}

// DividendTax is a withholding tax charged against a dividend.
type DividendTax struct {
	common
	TickerRef TickerID
	Cur       string
	Amount    money.Money // non-negative.
}

func NewDividendTax(id MovementID, account AccountID, on date.Date, ticker TickerID, amount money.Money) DividendTax {
	return DividendTax{common: common{id: id, account: account, date: on}, TickerRef: ticker, Cur: amount.Currency(), Amount: amount}
}

func (d DividendTax) Currency() string          { return d.Cur }
func (d DividendTax) Ticker() (TickerID, bool)  { return d.TickerRef, true }
func (d DividendTax) SignedAmount() money.Money { return d.Amount.Neg() }
func (d DividendTax) Validate() error {
	if err := validateCommon(d.common); err != nil {
		return err
	}
	if d.Amount.IsNegative() {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: dividend tax amount must be non-negative", d.id)
	}
	return nil
}

// DividendDate records an ex-dividend-date declaration; it carries no cash
// effect and exists purely as a scheduling fact consumers may use to
// anticipate pending dividends.
type DividendDate struct {
	common
	TickerRef TickerID
	ExDate    date.Date
}

func NewDividendDate(id MovementID, account AccountID, on date.Date, ticker TickerID, exDate date.Date) DividendDate {
	return DividendDate{common: common{id: id, account: account, date: on}, TickerRef: ticker, ExDate: exDate}
}

func (d DividendDate) Currency() string          { return "" }
func (d DividendDate) Ticker() (TickerID, bool)  { return d.TickerRef, true }
func (d DividendDate) SignedAmount() money.Money { return money.Money{} }
func (d DividendDate) Validate() error           { return validateCommon(d.common) }

// Split adjusts the quantity of an existing equity position by a ratio,
// per SPEC_FULL.md's supplemented-features section (grounded on
// etnz-portfolio's journal.go splitShare event). It carries no cash effect.
type Split struct {
	common
	TickerRef   TickerID
	Numerator   int64
	Denominator int64
}

func NewSplit(id MovementID, account AccountID, on date.Date, ticker TickerID, numerator, denominator int64) Split {
	return Split{common: common{id: id, account: account, date: on}, TickerRef: ticker, Numerator: numerator, Denominator: denominator}
}

func (s Split) Currency() string          { return "" }
func (s Split) Ticker() (TickerID, bool)  { return s.TickerRef, true }
func (s Split) SignedAmount() money.Money { return money.Money{} }
func (s Split) Validate() error {
	if err := validateCommon(s.common); err != nil {
		return err
	}
	if s.Numerator <= 0 || s.Denominator <= 0 {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: split ratio must be positive", s.id)
	}
	return nil
}

// Ratio returns the split's multiplicative ratio as a Quantity factor.
func (s Split) Ratio() money.Quantity {
	return money.Qty(s.Numerator).Div(money.Qty(s.Denominator))
}
