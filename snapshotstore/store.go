// Package snapshotstore implements the Snapshot Store (C9): a persistent
// key-value index of ordered snapshot series, one per (accountId,
// currencyId), (tickerId, currencyId), (tickerId), (accountId), (brokerId),
// and root key space named in spec §4.9.
//
// Grounded on etnz-portfolio's date.History[T] (etnz-portfolio's
// date/history.go, not carried into this module's own date/ package): a
// sorted, unique-by-date series exposing a binary-search "value as of
// date" read. This package generalizes that type from
// float32|float64|string to any snapshot payload type, and adds the
// replaceSuffix contract spec §4.9 requires that History[T] has no
// analogue for.
package snapshotstore

import (
	"slices"
	"sort"
	"sync"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
)

// series is an unexported, generalized date.History[T]: a sorted,
// unique-by-date slice pair with a binary-search "as of" read.
type series[V any] struct {
	dates  []date.Date
	values []V
}

func (s *series[V]) getBefore(on date.Date) (V, bool) {
	i, found := slices.BinarySearchFunc(s.dates, on, func(d, t date.Date) int {
		if d.After(t) {
			return 1
		}
		if d.Before(t) {
			return -1
		}
		return 0
	})
	if found {
		return s.values[i], true
	}
	if i == 0 {
		var zero V
		return zero, false
	}
	return s.values[i-1], true
}

func (s *series[V]) listFrom(from date.Date) []V {
	i := sort.Search(len(s.dates), func(i int) bool { return !s.dates[i].Before(from) })
	out := make([]V, len(s.dates)-i)
	copy(out, s.values[i:])
	return out
}

// replaceSuffix drops every entry whose date is >= fromDate and appends
// newSeq in its place. newSeq must already be sorted ascending by date and
// every entry must be >= fromDate; the caller (C10) guarantees this since
// it always rebuilds a whole suffix from a single projector run.
func (s *series[V]) replaceSuffix(fromDate date.Date, newDates []date.Date, newValues []V) {
	i := sort.Search(len(s.dates), func(i int) bool { return !s.dates[i].Before(fromDate) })
	s.dates = append(s.dates[:i:i], newDates...)
	s.values = append(s.values[:i:i], newValues...)
}

// keyState guards one key's series with its own mutex, so replaceSuffix
// calls on distinct keys proceed in parallel while calls on the same key
// serialize, per spec §4.9.
type keyState[V any] struct {
	mu      sync.Mutex
	version int64
	series  series[V]
}

// Store is an in-memory Snapshot Store for one key space (one of the six
// named in spec §4.9), generic over its payload type. It is the default
// backend engine.New wires, per SPEC_FULL.md §3.
type Store[K comparable, V any] struct {
	dateOf func(V) date.Date

	mu   sync.RWMutex
	keys map[K]*keyState[V]
}

// New constructs an empty Store. dateOf extracts the snapshot date from a
// payload value, since V carries no common interface.
func New[K comparable, V any](dateOf func(V) date.Date) *Store[K, V] {
	return &Store[K, V]{dateOf: dateOf, keys: make(map[K]*keyState[V])}
}

func (s *Store[K, V]) keyStateFor(key K) *keyState[V] {
	s.mu.RLock()
	ks, ok := s.keys[key]
	s.mu.RUnlock()
	if ok {
		return ks
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ks, ok = s.keys[key]; ok {
		return ks
	}
	ks = &keyState[V]{}
	s.keys[key] = ks
	return ks
}

// GetBefore returns the snapshot at or before on, per spec §4.9's
// getBefore(key, date) -> Option<Snapshot>.
func (s *Store[K, V]) GetBefore(key K, on date.Date) (V, bool) {
	ks := s.keyStateFor(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.series.getBefore(on)
}

// ListFrom returns every snapshot on or after from, in ascending date
// order, per spec §4.9's listFrom(key, date) -> Seq.
func (s *Store[K, V]) ListFrom(key K, from date.Date) []V {
	ks := s.keyStateFor(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.series.listFrom(from)
}

// ReplaceSuffix atomically replaces every entry of key dated >= fromDate
// with newSeq, per spec §4.9. newSeq need not be pre-sorted; it is sorted
// here by date before being spliced in.
func (s *Store[K, V]) ReplaceSuffix(key K, fromDate date.Date, newSeq []V) {
	ks := s.keyStateFor(key)
	sorted := make([]V, len(newSeq))
	copy(sorted, newSeq)
	sort.SliceStable(sorted, func(i, j int) bool { return s.dateOf(sorted[i]).Before(s.dateOf(sorted[j])) })
	dates := make([]date.Date, len(sorted))
	for i, v := range sorted {
		dates[i] = s.dateOf(v)
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.series.replaceSuffix(fromDate, dates, sorted)
	ks.version++
}

// Version returns the key's current write version, used by callers that
// need optimistic-concurrency semantics on top of this store's otherwise
// unconditional, mutex-serialized ReplaceSuffix (the in-memory store never
// itself returns engineerr.StoreConflict; conflicts are a property of the
// sqlitestore reference backend, where a concurrent process can race a
// row-version check).
func (s *Store[K, V]) Version(key K) int64 {
	ks := s.keyStateFor(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.version
}
