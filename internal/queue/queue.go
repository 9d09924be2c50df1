// Package queue implements the per-queue data structure that atomically
// chooses between storing a payload, handing it to a parked consumer, or
// parking the consumer: an in-memory FIFO variant and a persistent,
// append-only log variant sharing the same handoff machinery.
package queue

import (
	"context"
	"litemq/pkg/metrics"
	"sync"
)

// Variant selects which storage strategy a Queue wraps. Mode is fixed at
// broker construction time: a broker is either all in-memory or
// all-persistent, never mixed.
type Variant int

const (
	// Memory backs the queue with an in-process FIFO.
	Memory Variant = iota
	// Persistent backs the queue with an append-only log file plus a
	// byte-size cursor file.
	Persistent
)

// DequeueOutcome is the result surfaced to callers of Queue.Dequeue.
type DequeueOutcome int

const (
	// Delivered means Payload holds a value retrieved or handed off.
	Delivered DequeueOutcome = iota
	// Unavailable means no payload was delivered: either the handoff slot
	// was abandoned before a producer delivered anything (cancellation), or
	// a persistent queue hit a decode/I/O failure before parking.
	Unavailable
)

// Queue is a single named queue guarded by its own lock, held only for the
// short handshake of each operation and never across a parked consumer's
// suspension. The broker's registry lock is a separate, coarser lock over
// the name→Queue mapping; Queue itself knows nothing about the registry.
type Queue struct {
	mu      sync.Mutex
	variant Variant
	mem     *memoryQueue
	pers    *persistentQueue
}

// NewMemoryHandle constructs a Queue backed by an in-memory FIFO.
func NewMemoryHandle() *Queue {
	return &Queue{variant: Memory, mem: newMemoryQueue()}
}

// NewPersistentHandle constructs a Queue backed by the log file at path. It
// does not create the file; callers that need get-or-create semantics call
// EnsureExists.
func NewPersistentHandle(path string) *Queue {
	return &Queue{variant: Persistent, pers: newPersistentQueue(path)}
}

// EnsureExists creates an empty log file for persistent queues if one does
// not already exist. A no-op for in-memory queues.
func (q *Queue) EnsureExists() error {
	if q.variant != Persistent {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pers.ensureExists()
}

// Length returns the current stored-message count. Never blocks on a
// parked consumer.
func (q *Queue) Length() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.variant == Memory {
		return q.mem.length()
	}
	return q.pers.length()
}

// Enqueue delivers payload to the oldest live waiter if one is parked,
// otherwise stores it. Returns the length observed immediately after.
func (q *Queue) Enqueue(payload []byte) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.variant == Memory {
		return q.mem.enqueue(payload)
	}
	return q.pers.enqueue(payload)
}

// Dequeue pops the oldest stored payload if one exists; otherwise it parks
// a fresh handoff slot, releases the queue lock, and suspends on it until
// delivery or ctx cancellation. The lock MUST be released before
// suspending so a producer can observe the waiter and deliver without
// deadlocking. If ctx is cancelled while parked, the slot is abandoned: a
// racing producer observes the slot as closed and moves on, so no payload
// is lost.
func (q *Queue) Dequeue(ctx context.Context) (DequeueOutcome, []byte) {
	q.mu.Lock()
	var slot *handoff
	var result dequeueResult
	if q.variant == Memory {
		result = q.mem.dequeueOrPark()
	} else {
		r, err := q.pers.dequeueOrPark()
		if err != nil {
			q.mu.Unlock()
			return Unavailable, nil
		}
		result = r
	}
	if result.delivered {
		q.mu.Unlock()
		return Delivered, result.payload
	}
	slot = result.slot
	q.mu.Unlock()

	metrics.ParkedConsumers.Inc()
	defer metrics.ParkedConsumers.Dec()

	select {
	case payload, ok := <-slot.ch:
		if !ok {
			return Unavailable, nil
		}
		return Delivered, payload
	case <-ctx.Done():
		slot.abandon()
		// A producer may have claimed the slot just before abandon; its
		// payload is then (or is about to be) in the channel and is returned
		// rather than dropped. An abandoned slot's channel is closed empty.
		if payload, ok := <-slot.ch; ok {
			return Delivered, payload
		}
		return Unavailable, nil
	}
}

// Purge clears stored messages (and, for persistent queues, removes the
// on-disk log and cursor files) and returns the count cleared. Parked
// waiters are left untouched.
func (q *Queue) Purge() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.variant == Memory {
		return q.mem.purge()
	}
	return q.pers.purge()
}
