// If you are AI: This file defines the Region/Backend abstraction for the
// frame bus's four shared memory regions (spec.md §2, §9 "Platform
// abstraction"). Two backends satisfy it: a Linux backend that mmaps a file
// under /dev/shm (posix.go — the same mechanism glibc's shm_open uses under
// the hood, which is what the Python original's posix_ipc.SharedMemory
// relies on) and an in-process fallback (local.go) used on other platforms
// and in tests. Backend selection happens once, explicitly, at construction
// time via Probe — never off global, import-time state, unlike the Python
// original's module-level `system = platform.system()` branch.
package shm

import (
	"context"
	"fmt"
	"time"
)

// Region is one shared memory segment: the frame, timestamp, counter, or
// metadata region of a topic. Its backing bytes are zero-initialized on
// Create (spec.md §9 "Open question: counter region initial value").
type Region interface {
	// Bytes returns the region's backing slice. Callers synchronize access
	// externally (via the topic's region semaphores); Bytes itself does no
	// locking.
	Bytes() []byte
	// Close detaches this process's view of the region without removing the
	// underlying resource.
	Close() error
	// Unlink removes the named resource. Only the owning publisher calls
	// this, during shutdown.
	Unlink() error
}

// Backend creates and opens named shared memory regions.
type Backend interface {
	// Create creates a new named region of the given size. If a stale
	// resource of the same name already exists, the backend unlinks and
	// recreates it (spec.md §7 ErrResourceExists is recovered here, not
	// surfaced).
	Create(name string, size int) (Region, error)
	// Open attaches to an existing region. The region may not exist yet if
	// the publisher hasn't started; Open polls with bounded back-off until
	// it appears or ctx is done.
	Open(ctx context.Context, name string, size int) (Region, error)
	// Available reports whether this backend can actually be used on the
	// running platform.
	Available() bool
}

// Probe selects the best available backend: the /dev/shm-backed backend if
// usable, otherwise the in-process fallback.
func Probe() Backend {
	if posix := newPosixBackend(); posix.Available() {
		return posix
	}
	return newLocalBackend()
}

// pollBackoff implements the bounded back-off polling loop spec.md §4.5
// describes for subscriber-side region discovery: a subscriber may start
// before the publisher, so Open retries instead of failing immediately.
func pollBackoff(ctx context.Context, attempt func() (Region, bool, error)) (Region, error) {
	delay := 20 * time.Millisecond
	const maxDelay = 500 * time.Millisecond
	for {
		region, ok, err := attempt()
		if err != nil {
			return nil, err
		}
		if ok {
			return region, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("shm: open timed out waiting for region: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
