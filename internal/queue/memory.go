package queue

// memoryQueue is a FIFO of payloads plus a FIFO of parked-consumer handoff
// slots. It is not internally synchronized; callers (the broker) hold the
// enclosing Queue's lock around every method call.
type memoryQueue struct {
	messages [][]byte
	waiters  []*handoff
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{}
}

// length returns the number of stored (not yet delivered or parked-for)
// payloads. Never blocks.
func (q *memoryQueue) length() int64 {
	return int64(len(q.messages))
}

// enqueue delivers payload directly to the oldest live waiter if one
// exists, skipping any already-closed slots it encounters (lazy
// reclamation); otherwise it appends to messages. Returns the queue length
// observed immediately after the operation, matching the contract that a
// direct handoff yields length 0.
func (q *memoryQueue) enqueue(payload []byte) int64 {
	for len(q.waiters) > 0 {
		w := q.waiters[0]
		q.waiters = q.waiters[1:]
		if w.tryDeliver(payload) {
			return q.length()
		}
	}
	q.messages = append(q.messages, payload)
	return q.length()
}

// dequeueResult is the outcome of dequeueOrPark.
type dequeueResult struct {
	delivered bool
	payload   []byte
	slot      *handoff
}

// dequeueOrPark pops the oldest stored payload if one exists; otherwise it
// creates a fresh handoff slot, appends it to waiters, and returns it so
// the caller can release the queue lock before suspending on it.
func (q *memoryQueue) dequeueOrPark() dequeueResult {
	if len(q.messages) > 0 {
		payload := q.messages[0]
		q.messages = q.messages[1:]
		return dequeueResult{delivered: true, payload: payload}
	}
	h := newHandoff()
	q.waiters = append(q.waiters, h)
	return dequeueResult{slot: h}
}

// purge clears stored messages and returns the count cleared. Waiters are
// left untouched; still-parked consumers keep waiting.
func (q *memoryQueue) purge() int64 {
	prior := int64(len(q.messages))
	q.messages = nil
	return prior
}
