// If you are AI: This file defines the named-semaphore abstraction used for
// the four region semaphores and every per-subscriber wake semaphore
// (spec.md §2, §4.2, §9 "Saturation skip portability"). Two backends satisfy
// it: posix.go (mmap'd counters under /dev/shm, for cross-process use on
// Linux) and local.go (heap-backed counters, for other platforms and for
// tests that exercise a publisher and subscriber inside one process).
package sem

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrClosed is returned by Acquire when the semaphore has been unlinked by
// its owner (spec.md §7 ErrRegistrationLost is built on top of this).
var ErrClosed = errors.New("sem: semaphore unlinked")

// Semaphore is a named counting semaphore, created by exactly one process
// (the owner) and opened by any number of others.
type Semaphore interface {
	// Acquire blocks until the count is > 0, then decrements it. It returns
	// ErrClosed if the owner unlinks the semaphore while waiting.
	Acquire(ctx context.Context) error
	// Release increments the count by one. It is a no-op once Unlink has
	// been called.
	Release()
	// TryReleaseEdge implements the saturation rule: it releases only if
	// the current count is 0. Backends without count introspection (none
	// currently; both backends here support it) would implement this as an
	// unconditional Release, and subscribers must tolerate the resulting
	// spurious wakeups (spec.md §9).
	TryReleaseEdge()
	// Value returns the current count. ok is false if the backend cannot
	// introspect it.
	Value() (count uint32, ok bool)
	// Close detaches this process's view without removing the resource.
	Close() error
	// Unlink removes the named resource and wakes any pending Acquire with
	// ErrClosed. Only the owner calls this.
	Unlink() error
}

// Backend creates and opens named semaphores.
type Backend interface {
	Create(name string, initial uint32) (Semaphore, error)
	Open(ctx context.Context, name string) (Semaphore, error)
	Available() bool
}

// Probe selects the best available backend.
func Probe() Backend {
	if posix := newPosixBackend(); posix.Available() {
		return posix
	}
	return newLocalBackend()
}

// pollBackoff mirrors shm.pollBackoff: Open retries with bounded back-off
// while the named semaphore has not been created yet (spec.md §4.5 point 4:
// "wait until the named wake semaphore ... exists, then open it").
func pollBackoff(ctx context.Context, attempt func() (Semaphore, bool, error)) (Semaphore, error) {
	delay := 20 * time.Millisecond
	const maxDelay = 500 * time.Millisecond
	for {
		s, ok, err := attempt()
		if err != nil {
			return nil, err
		}
		if ok {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("sem: open timed out waiting for semaphore: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
