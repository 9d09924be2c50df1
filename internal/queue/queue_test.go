package queue

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryQueueFIFO(t *testing.T) {
	q := NewMemoryHandle()
	require.EqualValues(t, 1, q.Enqueue([]byte("a")))
	require.EqualValues(t, 2, q.Enqueue([]byte("b")))
	require.EqualValues(t, 2, q.Length())

	outcome, payload := q.Dequeue(context.Background())
	require.Equal(t, Delivered, outcome)
	require.Equal(t, "a", string(payload))

	outcome, payload = q.Dequeue(context.Background())
	require.Equal(t, Delivered, outcome)
	require.Equal(t, "b", string(payload))
	require.EqualValues(t, 0, q.Length())
}

func TestMemoryQueueHandoff(t *testing.T) {
	q := NewMemoryHandle()
	done := make(chan struct{})
	var outcome DequeueOutcome
	var payload []byte
	go func() {
		outcome, payload = q.Dequeue(context.Background())
		close(done)
	}()

	// Give the consumer a chance to park before the producer delivers.
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 0, q.Enqueue([]byte("direct")))

	<-done
	require.Equal(t, Delivered, outcome)
	require.Equal(t, "direct", string(payload))
	require.EqualValues(t, 0, q.Length())
}

func TestMemoryQueueCancellationDoesNotLosePayload(t *testing.T) {
	q := NewMemoryHandle()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	var outcome DequeueOutcome
	go func() {
		outcome, _ = q.Dequeue(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done
	require.Equal(t, Unavailable, outcome)

	// The abandoned slot must not swallow a subsequent enqueue.
	require.EqualValues(t, 1, q.Enqueue([]byte("stored")))
	outcome2, payload := q.Dequeue(context.Background())
	require.Equal(t, Delivered, outcome2)
	require.Equal(t, "stored", string(payload))
}

func TestMemoryQueuePurge(t *testing.T) {
	q := NewMemoryHandle()
	q.Enqueue([]byte("x"))
	q.Enqueue([]byte("y"))
	require.EqualValues(t, 2, q.Purge())
	require.EqualValues(t, 0, q.Length())
}

func TestPersistentQueueRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders")
	q := NewPersistentHandle(path)
	require.NoError(t, q.EnsureExists())

	require.EqualValues(t, 1, q.Enqueue([]byte("a")))
	require.EqualValues(t, 2, q.Enqueue([]byte("b")))
	require.EqualValues(t, 2, q.Length())

	outcome, payload := q.Dequeue(context.Background())
	require.Equal(t, Delivered, outcome)
	require.Equal(t, "a", string(payload))
	require.EqualValues(t, 1, q.Length())

	outcome, payload = q.Dequeue(context.Background())
	require.Equal(t, Delivered, outcome)
	require.Equal(t, "b", string(payload))
	require.EqualValues(t, 0, q.Length())
}

func TestPersistentQueueCompactsOnFullDrain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders")
	q := NewPersistentHandle(path)
	require.NoError(t, q.EnsureExists())

	q.Enqueue([]byte("a"))
	outcome, _ := q.Dequeue(context.Background())
	require.Equal(t, Delivered, outcome)

	// Parking on the now-empty, fully-drained log must trigger compaction
	// rather than leaving the cursor file growing forever.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	outcome, _ = q.Dequeue(ctx)
	require.Equal(t, Unavailable, outcome)

	size, err := fileSize(q.pers.cursorPath())
	require.NoError(t, err)
	require.EqualValues(t, 0, size)
}

func TestPersistentQueuePurge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders")
	q := NewPersistentHandle(path)
	require.NoError(t, q.EnsureExists())
	q.Enqueue([]byte("a"))
	q.Enqueue([]byte("b"))
	require.EqualValues(t, 2, q.Purge())
	require.EqualValues(t, 0, q.Length())
}
