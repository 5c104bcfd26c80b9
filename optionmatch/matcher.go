// Package optionmatch implements the Option Pair Matcher (C3): a FIFO
// per-contract-key matcher splitting each option movement's premium into a
// realized and an unrealized contribution.
//
// Grounded on etnz-portfolio's lots.go, whose averageCostOfSelling /
// fifoCostOfSelling / sell trio implements the identical shape of problem
// (consume a FIFO queue of entries proportionally, splitting a disposal's
// proceeds into a consumed and a residual part) for equity lots. This
// package generalizes the same technique to option open legs keyed by
// (ticker, type, strike, expiration) instead of by ticker alone, and to two
// directions (Long/Short) instead of one.
package optionmatch

import (
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/engineerr"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
)

// Direction classifies an open leg by which side of the contract the
// account holds.
type Direction int

const (
	Long Direction = iota
	Short
)

// Key is an alias for the movement package's contract-key type.
type Key = movement.ContractKey

// OpenLeg is one FIFO entry in a contract key's open queue.
type OpenLeg struct {
	Direction          Direction
	MovementID         movement.MovementID
	ContractsRemaining money.Quantity
	PremiumRemaining   money.Money // proportional to ContractsRemaining.
	seq                int64
}

// PairingMode selects how a close movement's premium is split between
// realized and unrealized, per spec §9's open question on option
// realized/unrealized convention.
type PairingMode int

const (
	// Matched is the mandated convention (§4.3): a close consumes the
	// opposite queue FIFO, realizing exactly the consumed legs'
	// proportional premium plus the close's own premium for the consumed
	// fraction, and opens a flipped leg for any surplus quantity.
	Matched PairingMode = iota
	// MovementSide is a legacy-compatible mode mirroring the teacher's
	// movement-grain convention: a close's own premium is realized in
	// full immediately, and the opposite queue is left untouched —
	// an open leg remains fully unrealized until its own terminal event,
	// regardless of any later closes against it.
	MovementSide
)

// State is the per-key state machine position, per spec §4.3.
type State int

const (
	Empty State = iota
	OpenLong
	OpenShort
	OpenMixed
)

func (s State) String() string {
	switch s {
	case Empty:
		return "Empty"
	case OpenLong:
		return "OpenLong"
	case OpenShort:
		return "OpenShort"
	case OpenMixed:
		return "OpenMixed"
	default:
		return "Unknown"
	}
}

// Result is the per-movement output required by spec §4.3: the realized
// and unrealized contributions of one option movement, which always sum to
// the movement's net premium (invariant #4 of spec §8).
type Result struct {
	RealizedDelta         money.Money
	UnrealizedDeltaChange money.Money
}

type bucket struct {
	long  []OpenLeg
	short []OpenLeg
}

// Matcher holds the open-queue state for every contract key of one
// (ticker, currency) slice. It is pure: Apply never performs I/O and
// produces a deterministic Result for a given movement and prior state.
type Matcher struct {
	currency string
	strict   bool
	mode     PairingMode
	queues   map[Key]*bucket
	seq      int64
}

// New constructs an empty Matcher for one (ticker, currency) slice.
// A close larger than the open opposite legs always records its surplus as
// a new open leg of the close's own direction; strict, when true, also
// returns ContractKeyMismatch/UnmatchedClose for it (spec §4.3's
// "permissive mode", which returns no error, is the default). mode selects the realized/unrealized
// split convention on a close (spec §9); Matched is the default everywhere
// callers pass the zero value.
func New(currency string, strict bool, mode PairingMode) *Matcher {
	return &Matcher{currency: currency, strict: strict, mode: mode, queues: make(map[Key]*bucket)}
}

func (m *Matcher) bucketFor(key Key) *bucket {
	b, ok := m.queues[key]
	if !ok {
		b = &bucket{}
		m.queues[key] = b
	}
	return b
}

// State reports the current state-machine position for a contract key.
func (m *Matcher) State(key Key) State {
	b, ok := m.queues[key]
	if !ok {
		return Empty
	}
	switch {
	case len(b.long) > 0 && len(b.short) > 0:
		return OpenMixed
	case len(b.long) > 0:
		return OpenLong
	case len(b.short) > 0:
		return OpenShort
	default:
		return Empty
	}
}

// OpenLegs returns a read-only snapshot of a key's open queue, combined
// across both directions, ordered by arrival.
func (m *Matcher) OpenLegs(key Key) []OpenLeg {
	b, ok := m.queues[key]
	if !ok {
		return nil
	}
	out := make([]OpenLeg, 0, len(b.long)+len(b.short))
	out = append(out, b.long...)
	out = append(out, b.short...)
	// merge by seq: lists are individually already sorted, so a simple
	// merge keeps this O(n).
	merged := make([]OpenLeg, 0, len(out))
	i, j := 0, len(b.long)
	longs, shorts := out[:len(b.long)], out[len(b.long):]
	for i < len(longs) && j-len(b.long) < len(shorts) {
		si := j - len(b.long)
		if longs[i].seq <= shorts[si].seq {
			merged = append(merged, longs[i])
			i++
		} else {
			merged = append(merged, shorts[si])
			j++
		}
	}
	merged = append(merged, longs[i:]...)
	merged = append(merged, shorts[j-len(b.long):]...)
	return merged
}

// UnrealizedTotal sums PremiumRemaining across every open leg of a key.
func (m *Matcher) UnrealizedTotal(key Key) money.Money {
	total := money.Zero(m.currency)
	for _, leg := range m.OpenLegs(key) {
		total = total.Add(leg.PremiumRemaining)
	}
	return total
}

// OpenContractCount returns the total number of contracts still open for a
// key, across both directions.
func (m *Matcher) OpenContractCount(key Key) money.Quantity {
	total := money.Qty(0)
	for _, leg := range m.OpenLegs(key) {
		total = total.Add(leg.ContractsRemaining)
	}
	return total
}

// Apply folds one option movement into the matcher state and returns the
// realized/unrealized split, per spec §4.3. Movements for a single key MUST
// be applied in ascending (timestamp, id) order — the matcher trusts its
// caller for ordering (spec §4.3's tie-break rule) and does not itself sort.
func (m *Matcher) Apply(o movement.OptionTrade) (Result, error) {
	key := o.Key()
	b := m.bucketFor(key)
	net := o.NetPremium()

	switch {
	case o.Code.IsOpen():
		direction := Long
		if o.Code == movement.SellToOpen {
			direction = Short
		}
		leg := OpenLeg{Direction: direction, MovementID: o.ID(), ContractsRemaining: o.Quantity, PremiumRemaining: net, seq: m.nextSeq()}
		m.append(b, leg)
		return Result{RealizedDelta: money.Zero(m.currency), UnrealizedDeltaChange: net}, nil

	case o.Code.IsClose() && m.mode == MovementSide:
		// Legacy convention: the close realizes its own premium in full
		// and never touches the opposite queue's open legs.
		return Result{RealizedDelta: net, UnrealizedDeltaChange: money.Zero(m.currency)}, nil

	case o.Code.IsClose():
		// BuyToClose closes a previously-opened Short leg (SellToOpen);
		// SellToClose closes a previously-opened Long leg (BuyToOpen).
		opposite := &b.short
		if o.Code == movement.SellToClose {
			opposite = &b.long
		}

		hadOpposite := len(*opposite) > 0
		remaining := o.Quantity
		realized := money.Zero(m.currency)
		consumed := money.Qty(0)

		for len(*opposite) > 0 && remaining.IsPositive() {
			leg := &(*opposite)[0]
			if leg.ContractsRemaining.GreaterThan(remaining) {
				fraction := remaining.Div(leg.ContractsRemaining)
				legPremium := leg.PremiumRemaining.Mul(fraction)
				leg.ContractsRemaining = leg.ContractsRemaining.Sub(remaining)
				leg.PremiumRemaining = leg.PremiumRemaining.Sub(legPremium)
				realized = realized.Add(legPremium)
				consumed = consumed.Add(remaining)
				remaining = money.Qty(0)
			} else {
				legPremium := leg.PremiumRemaining
				realized = realized.Add(legPremium)
				consumed = consumed.Add(leg.ContractsRemaining)
				remaining = remaining.Sub(leg.ContractsRemaining)
				*opposite = (*opposite)[1:]
			}
		}

		// Add the close movement's own proportional premium for the
		// consumed fraction.
		if o.Quantity.IsPositive() {
			closeFraction := consumed.Div(o.Quantity)
			realized = realized.Add(net.Mul(closeFraction))
		}

		var err error
		if remaining.IsPositive() {
			surplusFraction := remaining.Div(o.Quantity)
			surplusPremium := net.Mul(surplusFraction)
			flipDirection := Long
			if o.Code == movement.SellToClose {
				flipDirection = Short
			}
			leg := OpenLeg{Direction: flipDirection, MovementID: o.ID(), ContractsRemaining: remaining, PremiumRemaining: surplusPremium, seq: m.nextSeq()}
			m.append(b, leg)

			if m.strict {
				if !hadOpposite {
					err = engineerr.New(engineerr.ContractKeyMismatch, "close on key with no opposite open legs")
				} else {
					err = engineerr.New(engineerr.UnmatchedClose, "close quantity exceeds available opposite legs by %s contracts", remaining)
				}
			}
		}

		unrealizedChange := net.Sub(realized)
		return Result{RealizedDelta: realized, UnrealizedDeltaChange: unrealizedChange}, err

	case o.Code.IsTerminal():
		realized := money.Zero(m.currency)
		for _, leg := range b.long {
			realized = realized.Add(leg.PremiumRemaining)
		}
		for _, leg := range b.short {
			realized = realized.Add(leg.PremiumRemaining)
		}
		b.long = nil
		b.short = nil
		return Result{RealizedDelta: realized, UnrealizedDeltaChange: realized.Neg()}, nil

	default:
		return Result{}, engineerr.New(engineerr.InvalidMovement, "unhandled option code %s", o.Code)
	}
}

// HasOpenLegs reports whether any contract key still has open legs.
func (m *Matcher) HasOpenLegs() bool {
	for _, b := range m.queues {
		if len(b.long) > 0 || len(b.short) > 0 {
			return true
		}
	}
	return false
}

// GrandTotalOpenPremium sums signed PremiumRemaining across every contract
// key's open legs, used by the ticker-currency projector's unrealizedCurrent
// field (spec §4.4: "re-read from C3 state, not accumulated").
func (m *Matcher) GrandTotalOpenPremium() money.Money {
	total := money.Zero(m.currency)
	for key := range m.queues {
		total = total.Add(m.UnrealizedTotal(key))
	}
	return total
}

// TotalAbsOpenPremium sums the absolute value of PremiumRemaining across
// every open leg of every contract key, used by the performance denominator
// (spec §4.4).
func (m *Matcher) TotalAbsOpenPremium() money.Money {
	total := money.Zero(m.currency)
	for _, b := range m.queues {
		for _, leg := range b.long {
			total = total.Add(leg.PremiumRemaining.Abs())
		}
		for _, leg := range b.short {
			total = total.Add(leg.PremiumRemaining.Abs())
		}
	}
	return total
}

func (m *Matcher) nextSeq() int64 { m.seq++; return m.seq }

func (m *Matcher) append(b *bucket, leg OpenLeg) {
	if leg.Direction == Long {
		b.long = append(b.long, leg)
	} else {
		b.short = append(b.short, leg)
	}
}
