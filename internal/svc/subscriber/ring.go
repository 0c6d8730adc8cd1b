// If you are AI: This file implements the subscriber-side local ring
// (spec.md §4.5 "Client worker"). It is adapted from the teacher's
// bus.RingBuffer (internal/core/bus/ringbuffer.go): a pre-allocated slice
// and atomic read/write indices. The semantics differ from the teacher's
// ring on purpose — this is not a backpressure buffer for a fan-out
// consumer, it is a fixed-length, always-full window over the last B
// frames, pre-filled with zero-valued frames so Stack() has a defined
// result before the first read ever lands (spec.md's resolved concatenation
// semantics: a fixed-length B stack, not a growing buffer).
package subscriber

import (
	"sync"

	"framebus/internal/frame"
)

// localRing holds the last B frames received by a subscriber's background
// worker, in insertion order. It is single-writer (the worker goroutine)
// and single-reader (whoever calls Latest/Stack), guarded by a mutex since
// both Latest and Stack must observe a consistent snapshot.
type localRing struct {
	mu      sync.Mutex
	buf     []frame.Frame
	next    int // index the next Push writes to
	latest  frame.Frame
	hasRead bool
}

// newLocalRing returns a ring of length b, pre-filled with zero-valued
// frames of descBytes length so Stack() is well-defined immediately.
func newLocalRing(b int, descBytes int) *localRing {
	if b < 1 {
		b = 1
	}
	buf := make([]frame.Frame, b)
	for i := range buf {
		buf[i] = frame.Frame{Bytes: make([]byte, descBytes)}
	}
	return &localRing{buf: buf}
}

// Push inserts f at the ring's write position, advancing it, and records f
// as the most recently inserted frame.
func (r *localRing) Push(f frame.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = f
	r.next = (r.next + 1) % len(r.buf)
	r.latest = f
	r.hasRead = true
}

// Latest returns the most recently pushed frame and whether anything has
// been pushed yet.
func (r *localRing) Latest() (frame.Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.hasRead
}

// Stack returns the ring's B frames in insertion order, oldest first: the
// concatenation semantics spec.md leaves as an Open Question, resolved here
// as "always return a fixed-length B window" (see DESIGN.md).
func (r *localRing) Stack() []frame.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]frame.Frame, len(r.buf))
	for i := range out {
		out[i] = r.buf[(r.next+i)%len(r.buf)]
	}
	return out
}
