// Package signalbus implements the Signal Bus (C11): a bounded in-process
// publish/subscribe of coarse, fire-and-forget signals. Subscribers
// receive a monotonic epoch counter per signal kind and are expected to
// re-read state rather than diff against the payload, per spec §4.11.
//
// Grounded on aristath-sentinel's events_stream.go, whose SSE handler
// hands each subscriber a buffered channel (`make(chan *events.Event,
// 100)`) and never blocks a publisher on a slow subscriber; this package
// keeps that bounded-buffer, non-blocking-send shape but drops the
// payload entirely in favor of an epoch counter, since spec §4.11 is
// explicit that delivery is best-effort and loss is acceptable because
// state is re-readable.
package signalbus

import "sync"

// Signal names one of the seven coarse signal kinds of spec §4.11.
type Signal int

const (
	BrokersUpdated Signal = iota
	CurrenciesUpdated
	TickersUpdated
	AccountsUpdated
	MovementsUpdated
	SnapshotsUpdated
	BanksUpdated
)

func (s Signal) String() string {
	switch s {
	case BrokersUpdated:
		return "Brokers_Updated"
	case CurrenciesUpdated:
		return "Currencies_Updated"
	case TickersUpdated:
		return "Tickers_Updated"
	case AccountsUpdated:
		return "Accounts_Updated"
	case MovementsUpdated:
		return "Movements_Updated"
	case SnapshotsUpdated:
		return "Snapshots_Updated"
	case BanksUpdated:
		return "Banks_Updated"
	default:
		return "Unknown_Signal"
	}
}

// Event is delivered to a subscriber: which signal fired and its epoch
// immediately after this publish.
type Event struct {
	Signal Signal
	Epoch  int64
}

// defaultBuffer bounds each subscriber's channel; a slow subscriber drops
// signals rather than stalling the publisher.
const defaultBuffer = 16

// Bus is a bounded, best-effort publish/subscribe of Signal events.
type Bus struct {
	mu    sync.Mutex
	epoch map[Signal]int64
	subs  map[Signal][]chan Event
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{epoch: make(map[Signal]int64), subs: make(map[Signal][]chan Event)}
}

// Subscribe registers a new listener for sig and returns its receive-only
// channel plus an unsubscribe function. The channel is never closed by
// Unsubscribe, since a publish already in flight may still hold a
// reference; callers should simply stop reading.
func (b *Bus) Subscribe(sig Signal) (<-chan Event, func()) {
	ch := make(chan Event, defaultBuffer)
	b.mu.Lock()
	b.subs[sig] = append(b.subs[sig], ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[sig]
		for i, c := range subs {
			if c == ch {
				b.subs[sig] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
	return ch, unsubscribe
}

// Publish increments sig's epoch and fans the new epoch out to every
// current subscriber, non-blocking: a subscriber whose buffer is full
// misses this signal, which spec §4.11 accepts since state is
// re-readable. Returns the new epoch.
func (b *Bus) Publish(sig Signal) int64 {
	b.mu.Lock()
	b.epoch[sig]++
	epoch := b.epoch[sig]
	subs := append([]chan Event(nil), b.subs[sig]...)
	b.mu.Unlock()

	event := Event{Signal: sig, Epoch: epoch}
	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
	return epoch
}

// PublishBatch publishes every signal in sigs, in order, used at the end
// of a recomputation batch per spec §4.11's explicit Movements → Tickers
// → Accounts → Snapshots ordering (see recompute.Manager.Run).
func (b *Bus) PublishBatch(sigs ...Signal) {
	for _, sig := range sigs {
		b.Publish(sig)
	}
}

// Epoch returns sig's current epoch without publishing.
func (b *Bus) Epoch(sig Signal) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.epoch[sig]
}
