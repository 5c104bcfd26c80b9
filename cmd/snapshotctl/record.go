package main

import (
	"encoding/json"
	"fmt"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/engineerr"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
)

// record is one line of the movements file this command reads, a flat
// JSON shape covering the movement kinds a demonstration import needs.
// It intentionally does not cover every movement variant (options,
// splits, dividends): a full codec for every tagged variant belongs in
// the engine a real application builds against this module, not in this
// demonstration binary.
type record struct {
	Kind     string  `json:"kind"`
	ID       int64   `json:"id"`
	Account  int64   `json:"account"`
	Broker   int64   `json:"broker"`
	Date     string  `json:"date"`
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount,omitempty"`
	Ticker   int64   `json:"ticker,omitempty"`
	Side     string  `json:"side,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`
	Price    float64 `json:"price,omitempty"`
}

func parseRecord(line []byte) (record, error) {
	var r record
	if err := json.Unmarshal(line, &r); err != nil {
		return record{}, fmt.Errorf("decoding record: %w", err)
	}
	return r, nil
}

// toMovement converts a record into its Movement variant, per the tagged
// "kind" field.
func (r record) toMovement() (movement.Movement, error) {
	on, err := date.Parse(r.Date)
	if err != nil {
		return nil, fmt.Errorf("record %d: parsing date %q: %w", r.ID, r.Date, err)
	}

	switch r.Kind {
	case "deposit":
		return movement.NewBrokerMovement(movement.MovementID(r.ID), movement.AccountID(r.Account), on,
			movement.Deposit, money.New(r.Amount, r.Currency)), nil
	case "withdrawal":
		return movement.NewBrokerMovement(movement.MovementID(r.ID), movement.AccountID(r.Account), on,
			movement.Withdrawal, money.New(r.Amount, r.Currency)), nil
	case "fee":
		return movement.NewBrokerMovement(movement.MovementID(r.ID), movement.AccountID(r.Account), on,
			movement.Fee, money.New(r.Amount, r.Currency)), nil
	case "interest":
		return movement.NewBrokerMovement(movement.MovementID(r.ID), movement.AccountID(r.Account), on,
			movement.Interest, money.New(r.Amount, r.Currency)), nil
	case "trade":
		side := movement.Buy
		if r.Side == "sell" {
			side = movement.Sell
		}
		return movement.NewTrade(movement.MovementID(r.ID), movement.AccountID(r.Account), on,
			movement.TickerID(r.Ticker), r.Currency, side, money.Qty(r.Quantity), money.New(r.Price, r.Currency)), nil
	default:
		return nil, engineerr.New(engineerr.InvalidMovement, "record %d: unknown kind %q", r.ID, r.Kind)
	}
}
