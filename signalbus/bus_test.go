package signalbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversEpochToSubscriber(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe(SnapshotsUpdated)
	defer unsubscribe()

	epoch := b.Publish(SnapshotsUpdated)
	assert.Equal(t, int64(1), epoch)

	select {
	case ev := <-ch:
		assert.Equal(t, SnapshotsUpdated, ev.Signal)
		assert.Equal(t, int64(1), ev.Epoch)
	default:
		t.Fatal("expected a delivered event")
	}
}

func TestPublishBatchDeliversEverySignal(t *testing.T) {
	b := New()
	chMovements, _ := b.Subscribe(MovementsUpdated)
	chSnapshots, _ := b.Subscribe(SnapshotsUpdated)

	b.PublishBatch(MovementsUpdated, TickersUpdated, AccountsUpdated, SnapshotsUpdated)

	require.Len(t, chMovements, 1)
	require.Len(t, chSnapshots, 1)
	assert.Equal(t, int64(1), b.Epoch(MovementsUpdated))
	assert.Equal(t, int64(1), b.Epoch(SnapshotsUpdated))
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	b := New()
	b.Subscribe(BanksUpdated) // unread channel, will fill up.

	for i := 0; i < defaultBuffer+5; i++ {
		b.Publish(BanksUpdated)
	}
	assert.Equal(t, int64(defaultBuffer+5), b.Epoch(BanksUpdated))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe(AccountsUpdated)
	unsubscribe()

	b.Publish(AccountsUpdated)
	select {
	case <-ch:
		t.Fatal("unsubscribed channel should not receive")
	default:
	}
}
