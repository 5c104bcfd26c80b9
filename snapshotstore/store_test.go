package snapshotstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
)

type point struct {
	on    date.Date
	value int
}

func dateOf(p point) date.Date { return p.on }

func TestGetBeforeReturnsLatestAtOrBefore(t *testing.T) {
	s := New[string, point](dateOf)
	s.ReplaceSuffix("k1", date.New(2025, 1, 1), []point{
		{on: date.New(2025, 1, 1), value: 1},
		{on: date.New(2025, 1, 10), value: 2},
	})

	v, ok := s.GetBefore("k1", date.New(2025, 1, 5))
	require.True(t, ok)
	assert.Equal(t, 1, v.value)

	v, ok = s.GetBefore("k1", date.New(2025, 1, 10))
	require.True(t, ok)
	assert.Equal(t, 2, v.value)

	_, ok = s.GetBefore("k1", date.New(2024, 12, 31))
	assert.False(t, ok)
}

func TestListFromReturnsAscendingSuffix(t *testing.T) {
	s := New[string, point](dateOf)
	s.ReplaceSuffix("k1", date.New(2025, 1, 1), []point{
		{on: date.New(2025, 1, 1), value: 1},
		{on: date.New(2025, 1, 5), value: 2},
		{on: date.New(2025, 1, 10), value: 3},
	})

	got := s.ListFrom("k1", date.New(2025, 1, 5))
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].value)
	assert.Equal(t, 3, got[1].value)
}

func TestReplaceSuffixIsAtomicPerKey(t *testing.T) {
	s := New[string, point](dateOf)
	s.ReplaceSuffix("k1", date.New(2025, 1, 1), []point{
		{on: date.New(2025, 1, 1), value: 1},
		{on: date.New(2025, 1, 5), value: 2},
		{on: date.New(2025, 1, 10), value: 3},
	})

	// Replace everything from Jan 5 onward with a fresh, shorter suffix.
	s.ReplaceSuffix("k1", date.New(2025, 1, 5), []point{
		{on: date.New(2025, 1, 5), value: 99},
	})

	got := s.ListFrom("k1", date.New(2025, 1, 1))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].value)
	assert.Equal(t, 99, got[1].value)
	assert.Equal(t, int64(2), s.Version("k1"))
}

func TestDistinctKeysAreIndependent(t *testing.T) {
	s := New[string, point](dateOf)
	s.ReplaceSuffix("a", date.New(2025, 1, 1), []point{{on: date.New(2025, 1, 1), value: 1}})
	s.ReplaceSuffix("b", date.New(2025, 1, 1), []point{{on: date.New(2025, 1, 1), value: 2}})

	va, _ := s.GetBefore("a", date.New(2025, 1, 1))
	vb, _ := s.GetBefore("b", date.New(2025, 1, 1))
	assert.Equal(t, 1, va.value)
	assert.Equal(t, 2, vb.value)
}
