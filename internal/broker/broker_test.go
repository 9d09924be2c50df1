package broker_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"litemq/internal/broker"

	"github.com/stretchr/testify/require"
)

func TestMemoryBrokerFIFOAndIsolation(t *testing.T) {
	b := broker.New()

	n, err := b.Enqueue("orders", []byte("a"))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	n, err = b.Enqueue("orders", []byte("b"))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	require.EqualValues(t, 0, b.Length("other"))

	status, payload, err := b.Dequeue(context.Background(), "orders")
	require.NoError(t, err)
	require.Equal(t, broker.Ok, status)
	require.Equal(t, "a", string(payload))
	require.EqualValues(t, 1, b.Length("orders"))
}

func TestLengthAndPurgeDoNotCreateQueue(t *testing.T) {
	b := broker.New()
	require.EqualValues(t, 0, b.Length("ghost"))
	require.EqualValues(t, 0, b.Purge("ghost"))
	require.Empty(t, b.Names())
}

func TestHandoffAcrossEnqueueDequeue(t *testing.T) {
	b := broker.New()
	var wg sync.WaitGroup
	var status broker.DequeueStatus
	var payload []byte

	wg.Add(1)
	go func() {
		defer wg.Done()
		status, payload, _ = b.Dequeue(context.Background(), "jobs")
	}()

	time.Sleep(20 * time.Millisecond)
	n, err := b.Enqueue("jobs", []byte("work"))
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	wg.Wait()
	require.Equal(t, broker.Ok, status)
	require.Equal(t, "work", string(payload))
	require.EqualValues(t, 0, b.Length("jobs"))
}

func TestWaiterFIFOAcrossMultipleConsumers(t *testing.T) {
	b := broker.New()
	const n = 4
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, payload, _ := b.Dequeue(context.Background(), "fifo")
			results[i] = string(payload)
		}(i)
		time.Sleep(5 * time.Millisecond)
	}

	for i := 0; i < n; i++ {
		_, err := b.Enqueue("fifo", []byte{byte('a' + i)})
		require.NoError(t, err)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.Equal(t, string(rune('a'+i)), results[i])
	}
}

func TestFlushPurgesAndRemovesQueues(t *testing.T) {
	b := broker.New()
	b.Enqueue("a", []byte("1"))
	b.Enqueue("b", []byte("2"))
	b.Flush()
	require.Empty(t, b.Names())
	require.EqualValues(t, 0, b.Length("a"))
}

func TestPersistentBrokerSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	b1, err := broker.NewPersistent(dir)
	require.NoError(t, err)
	n, err := b1.Enqueue("orders", []byte("a"))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	b2, err := broker.NewPersistent(dir)
	require.NoError(t, err)
	require.EqualValues(t, 1, b2.Length("orders"))
	require.Contains(t, b2.Names(), "orders")

	status, payload, err := b2.Dequeue(context.Background(), "orders")
	require.NoError(t, err)
	require.Equal(t, broker.Ok, status)
	require.Equal(t, "a", string(payload))
}

func TestPersistentBrokerStartupIgnoresCursorFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders"), []byte("YQ==\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.dequeued"), []byte{}, 0o644))

	b, err := broker.NewPersistent(dir)
	require.NoError(t, err)
	require.Contains(t, b.Names(), "orders")
	require.NotContains(t, b.Names(), "orders.dequeued")
}

func TestDequeueCancellationReturnsUnavailable(t *testing.T) {
	b := broker.New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	status, payload, err := b.Dequeue(ctx, "empty")
	require.NoError(t, err)
	require.Equal(t, broker.Unavailable, status)
	require.Nil(t, payload)
}

func TestPersistentQueuePathJoin(t *testing.T) {
	dir := t.TempDir()
	b, err := broker.NewPersistent(dir)
	require.NoError(t, err)
	b.Enqueue("q1", []byte("x"))
	require.FileExists(t, filepath.Join(dir, "q1"))
}
