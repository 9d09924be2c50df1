package queue

import "sync"

// handoffState is the observable lifecycle of a HandoffSlot.
type handoffState int

const (
	handoffOpen handoffState = iota
	handoffDelivered
	handoffAbandoned
)

// handoff is a single-shot, capacity-1 delivery primitive used to park a
// consumer and wake it from a producer. It has three observable states:
// open, delivered (a producer placed exactly one payload) and abandoned
// (the consumer dropped its receive side before delivery). Grounded on the
// channel-based rendezvous used by the original queue implementation, which
// parks a receiver on a bounded mpsc channel and lazily skips closed ones.
type handoff struct {
	ch chan []byte

	mu     sync.Mutex
	state  handoffState
	closed bool
}

// newHandoff returns a fresh, open handoff slot.
func newHandoff() *handoff {
	return &handoff{ch: make(chan []byte, 1)}
}

// tryDeliver attempts to place payload into the slot. It returns false if
// the slot has already been closed (delivered-to or abandoned) and the
// caller must move on to the next waiter. Delivery itself never blocks: the
// channel has capacity 1 and is only ever sent to once.
func (h *handoff) tryDeliver(payload []byte) bool {
	h.mu.Lock()
	if h.closed || h.state != handoffOpen {
		h.mu.Unlock()
		return false
	}
	h.state = handoffDelivered
	h.closed = true
	h.mu.Unlock()
	h.ch <- payload
	close(h.ch)
	return true
}

// abandon transitions an open slot to abandoned. Called by the consumer
// when it gives up waiting (cancellation, deadline). A subsequent producer's
// tryDeliver observes the closed state and skips this slot.
func (h *handoff) abandon() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.state = handoffAbandoned
	h.closed = true
	h.mu.Unlock()
	close(h.ch)
}
