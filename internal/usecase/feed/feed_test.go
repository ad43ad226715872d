package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
)

func snap(projectID int64, completed int, status domain.Status) domain.ProgressSnapshot {
	return domain.ProgressSnapshot{
		ProjectID:       projectID,
		CompletedChunks: completed,
		TotalChunks:     10,
		Status:          status,
		LastUpdated:     time.Now(),
	}
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	f := New()
	sub := f.Subscribe(1)
	defer sub.Unsubscribe()

	f.Publish(snap(1, 3, domain.StatusProcessing))

	got := <-sub.C
	assert.Equal(t, 3, got.CompletedChunks)
	assert.Equal(t, uint64(1), got.Seq)
}

func TestSlowSubscriberSeesLatestOnly(t *testing.T) {
	f := New()
	sub := f.Subscribe(1)
	defer sub.Unsubscribe()

	f.Publish(snap(1, 1, domain.StatusProcessing))
	f.Publish(snap(1, 2, domain.StatusProcessing))
	f.Publish(snap(1, 3, domain.StatusProcessing))

	got := <-sub.C
	assert.Equal(t, 3, got.CompletedChunks)
	assert.Equal(t, uint64(3), got.Seq)

	select {
	case _, ok := <-sub.C:
		require.False(t, ok, "no further snapshot should be buffered")
	default:
	}
}

func TestPublishDiscardsRegressingSnapshot(t *testing.T) {
	f := New()
	sub := f.Subscribe(1)
	defer sub.Unsubscribe()

	f.Publish(snap(1, 2, domain.StatusProcessing))
	got := <-sub.C
	require.Equal(t, 2, got.CompletedChunks)

	f.Publish(snap(1, 1, domain.StatusProcessing))
	select {
	case s := <-sub.C:
		t.Fatalf("received regressing snapshot with %d completed after 2", s.CompletedChunks)
	default:
	}

	// Discarded snapshots do not consume a sequence number.
	f.Publish(snap(1, 3, domain.StatusProcessing))
	got = <-sub.C
	assert.Equal(t, 3, got.CompletedChunks)
	assert.Equal(t, uint64(2), got.Seq)
}

func TestSeqIsPerProject(t *testing.T) {
	f := New()
	a := f.Subscribe(1)
	b := f.Subscribe(2)
	defer a.Unsubscribe()
	defer b.Unsubscribe()

	f.Publish(snap(1, 1, domain.StatusProcessing))
	f.Publish(snap(1, 2, domain.StatusProcessing))
	f.Publish(snap(2, 1, domain.StatusProcessing))

	assert.Equal(t, uint64(2), (<-a.C).Seq)
	assert.Equal(t, uint64(1), (<-b.C).Seq)
}

func TestLateSubscriberGetsLastSnapshot(t *testing.T) {
	f := New()
	f.Publish(snap(1, 5, domain.StatusProcessing))

	sub := f.Subscribe(1)
	defer sub.Unsubscribe()

	got := <-sub.C
	assert.Equal(t, 5, got.CompletedChunks)
}

func TestTerminalSnapshotClosesChannel(t *testing.T) {
	f := New()
	sub := f.Subscribe(1)

	f.Publish(snap(1, 10, domain.StatusCompleted))

	got, ok := <-sub.C
	require.True(t, ok)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	_, ok = <-sub.C
	assert.False(t, ok, "channel should be closed after terminal snapshot")

	// Unsubscribe after close must not panic.
	sub.Unsubscribe()
}

func TestSubscribeAfterTerminal(t *testing.T) {
	f := New()
	f.Publish(snap(1, 10, domain.StatusCompleted))

	sub := f.Subscribe(1)
	got, ok := <-sub.C
	require.True(t, ok)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	_, ok = <-sub.C
	assert.False(t, ok)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	f := New()
	sub := f.Subscribe(1)
	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	f.Publish(snap(1, 1, domain.StatusProcessing))

	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestDropClosesSubscribers(t *testing.T) {
	f := New()
	sub := f.Subscribe(1)
	f.Publish(snap(1, 1, domain.StatusProcessing))
	<-sub.C

	f.Drop(1)
	_, ok := <-sub.C
	assert.False(t, ok)

	// A fresh feed starts a fresh sequence.
	sub2 := f.Subscribe(1)
	defer sub2.Unsubscribe()
	f.Publish(snap(1, 1, domain.StatusProcessing))
	assert.Equal(t, uint64(1), (<-sub2.C).Seq)
}
