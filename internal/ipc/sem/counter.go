// If you are AI: This file holds the busy-wait counter logic shared by the
// posix and local backends. Both back a Semaphore with nothing more than a
// *uint32 and atomic compare-and-swap; the only difference between them is
// where that uint32 lives (an mmap'd page versus a heap allocation).
package sem

import (
	"context"
	"sync/atomic"
	"time"
)

// closedSentinel marks a counter as unlinked. It is far above any value a
// legitimate semaphore count reaches (subscriber counts are single digits,
// wake semaphores saturate at 1).
const closedSentinel = ^uint32(0)

// counter implements the Acquire/Release/TryReleaseEdge/Value logic of
// Semaphore against a shared *uint32. There is no OS-level blocking: Acquire
// spins with exponential back-off, which is correct (if not maximally
// efficient) for the low wake/publish rates this bus targets.
type counter struct {
	ptr *uint32
}

func (c counter) Acquire(ctx context.Context) error {
	delay := time.Millisecond
	const maxDelay = 20 * time.Millisecond
	for {
		for {
			cur := atomic.LoadUint32(c.ptr)
			if cur == closedSentinel {
				return ErrClosed
			}
			if cur == 0 {
				break
			}
			if atomic.CompareAndSwapUint32(c.ptr, cur, cur-1) {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

func (c counter) Release() {
	for {
		cur := atomic.LoadUint32(c.ptr)
		if cur == closedSentinel {
			return
		}
		if atomic.CompareAndSwapUint32(c.ptr, cur, cur+1) {
			return
		}
	}
}

// TryReleaseEdge releases only from zero, so a burst of publications before
// a subscriber wakes coalesces into a single pending wake instead of a
// saturated counter (spec.md §4.2 "Saturation rule").
func (c counter) TryReleaseEdge() {
	atomic.CompareAndSwapUint32(c.ptr, 0, 1)
}

func (c counter) Value() (uint32, bool) {
	v := atomic.LoadUint32(c.ptr)
	if v == closedSentinel {
		return 0, true
	}
	return v, true
}

// MarkClosed stores the closed sentinel, waking any pending Acquire with
// ErrClosed. Called by Unlink before the backing resource is removed.
func (c counter) MarkClosed() {
	atomic.StoreUint32(c.ptr, closedSentinel)
}
