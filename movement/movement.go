// Package movement implements the Movement Model (C2): a tagged-variant
// description of every event kind a broker account's ledger can record.
//
// Grounded on etnz-portfolio's transactions.go (the Buy/Sell/Dividend/...
// variant set) and journal.go (the exhaustive switch that lowers each
// variant to atomic ledger effects). Per spec §9 the optional-bundle form
// used by the teacher's wrapper types is explicitly forbidden; every
// variant here is its own concrete type satisfying one common interface,
// so a consumer's switch is exhaustive and a single movement can never
// carry two variants' fields at once.
package movement

import (
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/engineerr"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
)

// AccountID identifies a broker account, stable for its lifetime (§3).
type AccountID int64

// TickerID identifies a ticker, stable for its lifetime (§3).
type TickerID int64

// BrokerID identifies a broker, the grouping entity one level above
// AccountID in the Broker/Overview Aggregator's (C8) roll-up (§3).
type BrokerID int64

// MovementID identifies a single persisted movement row (§3).
type MovementID int64

// Movement is the common interface every variant satisfies. Consumers
// type-switch over it exhaustively; spec §2 C2 operations.
type Movement interface {
	ID() MovementID
	Account() AccountID
	Date() date.Date
	// Ticker returns the ticker this movement references, if any.
	Ticker() (TickerID, bool)
	// Currency returns the movement's currency.
	Currency() string
	// SignedAmount returns the movement's net cash effect, in its own
	// currency: positive credits the account's cash, negative debits it.
	SignedAmount() money.Money
	// Validate checks the variant's invariants, per spec §4.2.
	Validate() error
}

// common is embedded by every variant to provide the shared identity
// fields, mirroring the teacher's baseCmd embedding pattern.
type common struct {
	id      MovementID
	account AccountID
	date    date.Date
}

func (c common) ID() MovementID     { return c.id }
func (c common) Account() AccountID { return c.account }
func (c common) Date() date.Date    { return c.date }

func validateCommon(c common) error {
	if c.account == 0 {
		return engineerr.New(engineerr.InvalidMovement, "movement %d: missing account", c.id)
	}
	return nil
}
