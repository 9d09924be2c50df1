// Package broker implements the registry mapping queue names to queue
// instances, plus the two-level locking discipline that coordinates
// "get-or-create then operate" under concurrency: one lock over the
// name→Queue mapping, and one lock per queue for the actual handshake.
// Grounded on the per-key lock map used for per-thread isolation in the
// teacher's storage layer (one package-level lock guarding a map of
// per-key locks, looked up and created on demand).
package broker

import (
	"context"
	"fmt"
	"io/fs"
	"litemq/internal/queue"
	"litemq/pkg/logger"
	"litemq/pkg/metrics"
	"os"
	"path/filepath"
	"sync"
)

// Mode fixes a broker's storage variant at construction time.
type Mode int

const (
	// InMemory backs every queue with an in-process FIFO; nothing survives
	// a restart.
	InMemory Mode = iota
	// Persistent backs every queue with an append-only log file under a
	// data directory.
	Persistent
)

// DequeueStatus mirrors the RPC-surfaced status codes for a DEQUEUE call.
type DequeueStatus int

const (
	// Ok means Payload holds a delivered value.
	Ok DequeueStatus = iota
	// Unavailable means no payload was delivered: the parked consumer's
	// handoff slot closed without delivery (cancellation, deadline), or a
	// persistent queue hit a decode/I/O failure before parking.
	Unavailable
)

// Broker is the registry mapping queue names to Queue instances. It is safe
// for concurrent use: the registryMu lock guards only map membership,
// never a queue's own operation, so operations on distinct queues proceed
// in parallel while operations on the same queue serialize on that queue's
// lock.
type Broker struct {
	mode    Mode
	dataDir string

	registryMu sync.Mutex
	queues     map[string]*queue.Queue
}

// New constructs an in-memory broker with an empty registry.
func New() *Broker {
	return &Broker{mode: InMemory, queues: make(map[string]*queue.Queue)}
}

// NewPersistent constructs a broker rooted at dataDir. dataDir is created
// if absent; every immediate entry whose name does not end in the cursor
// suffix is registered as a persistent queue named after the entry. No
// validation of file contents is performed here — malformed lines surface
// later as decode failures on dequeue.
func NewPersistent(dataDir string) (*Broker, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	b := &Broker{mode: Persistent, dataDir: dataDir, queues: make(map[string]*queue.Queue)}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("enumerate data dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) == ".dequeued" {
			continue
		}
		b.queues[name] = queue.NewPersistentHandle(filepath.Join(dataDir, name))
		logger.Info("queue_registered_at_startup", "queue", name)
	}
	return b, nil
}

// getOrCreate returns the Queue for name, constructing and inserting it if
// absent. The registry lock is held only long enough to check membership
// and, on miss, to insert the freshly constructed Queue — never across the
// queue's own operation.
func (b *Broker) getOrCreate(name string) (*queue.Queue, error) {
	b.registryMu.Lock()
	q, ok := b.queues[name]
	if ok {
		b.registryMu.Unlock()
		return q, nil
	}
	if b.mode == InMemory {
		q = queue.NewMemoryHandle()
	} else {
		q = queue.NewPersistentHandle(filepath.Join(b.dataDir, name))
	}
	b.queues[name] = q
	b.registryMu.Unlock()

	if err := q.EnsureExists(); err != nil {
		return nil, fmt.Errorf("create queue log for %q: %w", name, err)
	}
	return q, nil
}

// lookup returns the Queue for name without creating it, and whether it
// existed. Used by LENGTH and PURGE, which must not create queues.
func (b *Broker) lookup(name string) (*queue.Queue, bool) {
	b.registryMu.Lock()
	defer b.registryMu.Unlock()
	q, ok := b.queues[name]
	return q, ok
}

// Health always succeeds; the broker has no external dependency whose
// health could be checked beyond the process being alive to answer.
func (b *Broker) Health() error {
	return nil
}

// Enqueue resolves or creates the named queue, then either hands payload to
// the oldest live waiter or stores it, returning the length observed
// immediately afterward.
func (b *Broker) Enqueue(name string, payload []byte) (int64, error) {
	q, err := b.getOrCreate(name)
	if err != nil {
		logger.Error("enqueue_failed", "queue", name, "error", err)
		return 0, err
	}
	n := q.Enqueue(payload)
	metrics.EnqueueTotal.WithLabelValues(name).Inc()
	metrics.QueueLength.WithLabelValues(name).Set(float64(n))
	return n, nil
}

// Dequeue resolves or creates the named queue, then pops the oldest stored
// payload or parks until one is delivered or ctx is cancelled.
func (b *Broker) Dequeue(ctx context.Context, name string) (DequeueStatus, []byte, error) {
	q, err := b.getOrCreate(name)
	if err != nil {
		logger.Error("dequeue_failed", "queue", name, "error", err)
		return Unavailable, nil, err
	}

	outcome, payload := q.Dequeue(ctx)

	metrics.QueueLength.WithLabelValues(name).Set(float64(q.Length()))
	if outcome == queue.Unavailable {
		metrics.DequeueUnavailableTotal.WithLabelValues(name).Inc()
		return Unavailable, nil, nil
	}
	metrics.DequeueTotal.WithLabelValues(name).Inc()
	return Ok, payload, nil
}

// Length returns the stored-message count for name, or 0 without creating
// the queue if name is unknown.
func (b *Broker) Length(name string) int64 {
	q, ok := b.lookup(name)
	if !ok {
		return 0
	}
	return q.Length()
}

// Purge clears the named queue's stored messages, returning the count
// cleared. Returns 0 without creating the queue if name is unknown.
func (b *Broker) Purge(name string) int64 {
	q, ok := b.lookup(name)
	if !ok {
		return 0
	}
	n := q.Purge()
	metrics.PurgeTotal.WithLabelValues(name).Inc()
	metrics.QueueLength.WithLabelValues(name).Set(0)
	return n
}

// Flush purges and removes every queue from the registry. In persistent
// mode this removes every on-disk log and cursor file.
func (b *Broker) Flush() {
	b.registryMu.Lock()
	defer b.registryMu.Unlock()
	for name, q := range b.queues {
		q.Purge()
		metrics.QueueLength.WithLabelValues(name).Set(0)
		delete(b.queues, name)
	}
	logger.Info("broker_flushed")
}

// Names returns a snapshot of currently registered queue names, used by
// health/stats reporting.
func (b *Broker) Names() []string {
	b.registryMu.Lock()
	defer b.registryMu.Unlock()
	names := make([]string, 0, len(b.queues))
	for name := range b.queues {
		names = append(names, name)
	}
	return names
}

// DataDirSize returns the total on-disk size, in bytes, of the regular
// files under the broker's data directory. In-memory mode has no data
// directory and always reports zero. Best-effort: a file that vanishes
// mid-walk is skipped rather than failing the whole sum, matching the
// teacher's best-effort disk usage walk in pkg/store/metrics.go.
func (b *Broker) DataDirSize() uint64 {
	if b.mode != Persistent || b.dataDir == "" {
		return 0
	}
	var total uint64
	_ = filepath.WalkDir(b.dataDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		total += uint64(fi.Size())
		return nil
	})
	return total
}
