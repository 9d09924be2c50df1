package queue

import (
	"bufio"
	"io"
	"litemq/internal/codec"
	"litemq/pkg/logger"
	"os"

	"github.com/valyala/bytebufferpool"
)

// linePool pools the scratch buffer used to assemble an encoded log line
// before it is written, avoiding an allocation per enqueue on a persistent
// queue under steady load. Mirrors the teacher's bytebufferpool.Get/Put
// pooling around payloads moving through its ingest pipeline.
var linePool bytebufferpool.Pool

const cursorSuffix = ".dequeued"

// persistentQueue derives its stored-message sequence from two files on
// every operation rather than keeping it in memory: an append-only payload
// log and a cursor file whose byte-size is the number of lines already
// consumed. waiters behave exactly as in memoryQueue.
type persistentQueue struct {
	path    string
	waiters []*handoff
}

func newPersistentQueue(path string) *persistentQueue {
	return &persistentQueue{path: path}
}

func (q *persistentQueue) cursorPath() string {
	return q.path + cursorSuffix
}

// lineCount scans path counting '\n'-terminated lines. A missing file
// counts as zero lines.
func lineCount(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	var count int64
	r := bufio.NewReader(f)
	for {
		_, err := r.ReadString('\n')
		if err == nil {
			count++
			continue
		}
		if err == io.EOF {
			return count, nil
		}
		return count, err
	}
}

// fileSize returns a file's size in bytes, or 0 if it does not exist.
func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	return info.Size(), nil
}

// length reads the payload log counting lines, reads the cursor file's
// size, and returns lines minus cursor. Missing files are treated as size
// zero, so an absent log is an empty queue with length 0.
func (q *persistentQueue) length() int64 {
	lines, err := lineCount(q.path)
	if err != nil {
		logger.Error("persistent_queue_length_failed", "path", q.path, "error", err)
		return 0
	}
	dequeued, err := fileSize(q.cursorPath())
	if err != nil {
		logger.Error("persistent_queue_cursor_read_failed", "path", q.cursorPath(), "error", err)
		return 0
	}
	n := lines - dequeued
	if n < 0 {
		return 0
	}
	return n
}

// enqueue appends encode(payload)+"\n" to the log, delivering directly to
// the oldest live waiter first exactly as memoryQueue does. Appends are
// single-appender (the queue lock guarantees this) so each write lands as
// one atomic line up to OS append-atomicity. On I/O failure the payload is
// NOT persisted; the operation is logged and reported as length 0.
func (q *persistentQueue) enqueue(payload []byte) int64 {
	for len(q.waiters) > 0 {
		w := q.waiters[0]
		q.waiters = q.waiters[1:]
		if w.tryDeliver(payload) {
			return q.length()
		}
	}

	prior := q.length()
	f, err := os.OpenFile(q.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Error("persistent_queue_enqueue_open_failed", "path", q.path, "error", err)
		return 0
	}
	defer f.Close()

	buf := linePool.Get()
	defer linePool.Put(buf)
	buf.SetString(codec.Encode(payload))
	buf.WriteByte('\n')

	if _, err := f.Write(buf.Bytes()); err != nil {
		logger.Error("persistent_queue_enqueue_write_failed", "path", q.path, "error", err)
		return 0
	}
	return prior + 1
}

// dequeueOrPark pops the message at the current cursor position from the
// log if one exists; otherwise it parks a fresh handoff slot exactly as
// memoryQueue. A decode or I/O failure on the persisted line is a
// precondition violation: it is logged, the cursor is NOT advanced, and the
// caller must treat the result as Unavailable.
func (q *persistentQueue) dequeueOrPark() (dequeueResult, error) {
	cursor, err := fileSize(q.cursorPath())
	if err != nil {
		return dequeueResult{}, err
	}

	payload, found, err := q.readAt(cursor)
	if err != nil {
		// Precondition violation: decode failed on a persisted line. Do not
		// advance the cursor; the caller treats this as Unavailable.
		return dequeueResult{}, err
	}
	if found {
		if err := q.advanceCursor(); err != nil {
			logger.Error("persistent_queue_cursor_advance_failed", "path", q.path, "error", err)
			return dequeueResult{}, err
		}
		return dequeueResult{delivered: true, payload: payload}, nil
	}

	// No line at the cursor position: if the cursor is non-zero the log has
	// been fully drained, so compact it to bound file growth.
	if cursor > 0 {
		if err := os.Truncate(q.path, 0); err != nil && !os.IsNotExist(err) {
			logger.Error("persistent_queue_compact_truncate_failed", "path", q.path, "error", err)
		}
		if err := os.Remove(q.cursorPath()); err != nil && !os.IsNotExist(err) {
			logger.Error("persistent_queue_compact_remove_cursor_failed", "path", q.cursorPath(), "error", err)
		}
	}

	h := newHandoff()
	q.waiters = append(q.waiters, h)
	return dequeueResult{slot: h}, nil
}

// readAt returns the decoded payload at the given line index, if present.
func (q *persistentQueue) readAt(cursor int64) ([]byte, bool, error) {
	f, err := os.Open(q.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var idx int64
	for {
		line, err := r.ReadString('\n')
		if err == nil {
			if idx == cursor {
				trimmed := line[:len(line)-1]
				payload, derr := codec.Decode(trimmed)
				if derr != nil {
					logger.Error("persistent_queue_decode_failed", "path", q.path, "line_index", idx, "error", derr)
					return nil, false, derr
				}
				return payload, true, nil
			}
			idx++
			continue
		}
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, err
	}
}

// advanceCursor appends one byte to the cursor file, growing its size (and
// therefore num_dequeued) by one.
func (q *persistentQueue) advanceCursor() error {
	f, err := os.OpenFile(q.cursorPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte{'x'})
	return err
}

// purge removes the log and cursor files, returning the length observed
// beforehand. Cursor absence is not an error.
func (q *persistentQueue) purge() int64 {
	prior := q.length()
	if err := os.Remove(q.path); err != nil && !os.IsNotExist(err) {
		logger.Error("persistent_queue_purge_remove_log_failed", "path", q.path, "error", err)
	}
	if err := os.Remove(q.cursorPath()); err != nil && !os.IsNotExist(err) {
		logger.Error("persistent_queue_purge_remove_cursor_failed", "path", q.cursorPath(), "error", err)
	}
	return prior
}

// ensureExists creates an empty log file if one is not already present,
// used by the broker's get-or-create protocol for persistent-mode queues.
func (q *persistentQueue) ensureExists() error {
	f, err := os.OpenFile(q.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
