// Package acctproj implements the BrokerAccount Financial Projector (C6):
// it folds one account's cash-bearing movements, combined with the
// ticker-currency projections (C4) for every ticker the account holds in a
// given currency, into a dense BrokerFinancialSnapshot series.
//
// Grounded on etnz-portfolio's accounting.go, which folds a ledger's
// deposit/withdrawal/fee rows into cumulative cash totals; this package
// keeps the same single-pass fold shape and adds the ticker-currency
// roll-up spec §4.6 requires.
package acctproj

import (
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
)

// Snapshot is the BrokerFinancialSnapshot entity of spec §3, scoped to one
// (account, currency) pair.
type Snapshot struct {
	Account  movement.AccountID
	Currency string
	Date     date.Date

	Deposited         money.Money
	Withdrawn         money.Money
	Invested          money.Money
	RealizedGains     money.Money
	UnrealizedGains   money.Money
	Commissions       money.Money
	Fees              money.Money
	OptionsIncome     money.Money
	DividendsReceived money.Money
	OtherIncome       money.Money
	// TransferredIn/TransferredOut track ACAT and currency-conversion
	// movements, supplemented per SPEC_FULL.md's counterparty-transfer
	// feature (the base spec names ACATIn/ACATOut kinds but no dedicated
	// counter for them).
	TransferredIn  money.Money
	TransferredOut money.Money

	OpenTrades      bool
	MovementCounter int64

	RealizedPercentage        money.Percent
	UnrealizedGainsPercentage money.Percent
	NetCashFlow               money.Money
}
