package movement

import (
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/engineerr"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
)

// BrokerKind enumerates the cash-account movement kinds of spec §3.
type BrokerKind int

const (
	Deposit BrokerKind = iota
	Withdrawal
	Fee
	Interest
	BalanceAdjustment
	Conversion
	ACATIn
	ACATOut
)

func (k BrokerKind) String() string {
	switch k {
	case Deposit:
		return "Deposit"
	case Withdrawal:
		return "Withdrawal"
	case Fee:
		return "Fee"
	case Interest:
		return "Interest"
	case BalanceAdjustment:
		return "BalanceAdjustment"
	case Conversion:
		return "Conversion"
	case ACATIn:
		return "ACATIn"
	case ACATOut:
		return "ACATOut"
	default:
		return "Unknown"
	}
}

// BrokerMovement is the cash-bearing movement variant: deposits,
// withdrawals, fees, interest, balance adjustments, currency conversions
// and ACAT transfers. Grounded on transactions.go's Deposit/Withdraw/Convert
// structs, generalized into the single tagged Kind the spec names.
type BrokerMovement struct {
	common
	Kind BrokerKind
	// Amount is a non-negative magnitude; sign comes from Kind.
	Amount      money.Money
	Commissions money.Money
	Fees        money.Money

	// RelatedTicker optionally ties the movement to a ticker (e.g. a fee
	// charged against a specific position). Zero value means none.
	RelatedTicker    TickerID
	HasRelatedTicker bool

	// FromCurrency/AmountChanged are only set for Kind == Conversion: the
	// debited leg's currency and magnitude.
	FromCurrency  string
	AmountChanged money.Money
}

// NewBrokerMovement constructs a BrokerMovement.
func NewBrokerMovement(id MovementID, account AccountID, on date.Date, kind BrokerKind, amount money.Money) BrokerMovement {
	return BrokerMovement{
		common: common{id: id, account: account, date: on},
		Kind:   kind,
		Amount: amount,
	}
}

func (m BrokerMovement) Currency() string { return m.Amount.Currency() }

// Ticker implements Movement.
func (m BrokerMovement) Ticker() (TickerID, bool) { return m.RelatedTicker, m.HasRelatedTicker }

// SignedAmount returns the net cash effect in Amount's currency: deposits,
// interest, ACATIn and balance adjustments credit; withdrawals, fees and
// ACATOut debit. Commissions and fees are always subtracted, per spec
// §4.2's "signs come from variant + side + code, not from field sign". A
// Conversion's credited leg is Amount; the debited FromCurrency leg is
// applied separately by the caller (C6), since it lives in another
// currency and cannot be folded into a single SignedAmount.
func (m BrokerMovement) SignedAmount() money.Money {
	base := m.Amount
	switch m.Kind {
	case Deposit, Interest, ACATIn, BalanceAdjustment, Conversion:
		// amount credits Amount.Currency().
	case Withdrawal, Fee, ACATOut:
		base = base.Neg()
	}
	return base.Sub(m.Commissions).Sub(m.Fees)
}

func (m BrokerMovement) Validate() error {
	if err := validateCommon(m.common); err != nil {
		return err
	}
	if m.Amount.IsNegative() {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: broker movement amount must be non-negative", m.id)
	}
	if m.Commissions.IsNegative() || m.Fees.IsNegative() {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: commissions/fees must be non-negative", m.id)
	}
	if m.Kind == Conversion {
		if m.FromCurrency == "" {
			return engineerr.New(engineerr.InvalidMovement, "movement %d: conversion missing fromCurrency", m.id)
		}
		if m.FromCurrency == m.Amount.Currency() {
			return engineerr.New(engineerr.InvalidMovement, "movement %d: conversion fromCurrency equals toCurrency", m.id)
		}
		if m.AmountChanged.IsZero() {
			return engineerr.New(engineerr.InvalidMovement, "movement %d: conversion missing amountChanged", m.id)
		}
	}
	return nil
}
