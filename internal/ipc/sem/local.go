// If you are AI: This file implements the in-process fallback Backend. Named
// counters live as *uint32 in a package-global table guarded by a mutex,
// instead of on an mmap'd page. Acquire/Release/TryReleaseEdge/Value/
// MarkClosed are identical to the posix backend via the shared counter type.

package sem

import (
	"context"
	"sync"
)

// localBackend is a process-wide registry of named counters.
type localBackend struct {
	mu       sync.Mutex
	counters map[string]*uint32
}

var localRegistry = &localBackend{counters: make(map[string]*uint32)}

func newLocalBackend() Backend { return localRegistry }

func (b *localBackend) Available() bool { return true }

func (b *localBackend) Create(name string, initial uint32) (Semaphore, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := initial
	b.counters[name] = &v
	return &localSem{counter: counter{ptr: &v}}, nil
}

func (b *localBackend) Open(ctx context.Context, name string) (Semaphore, error) {
	return pollBackoff(ctx, func() (Semaphore, bool, error) {
		b.mu.Lock()
		ptr, ok := b.counters[name]
		b.mu.Unlock()
		if !ok {
			return nil, false, nil
		}
		return &localSem{counter: counter{ptr: ptr}}, true, nil
	})
}

// localSem is a Semaphore backed by a heap-allocated counter.
type localSem struct {
	counter
}

func (s *localSem) Close() error { return nil }

func (s *localSem) Unlink() error {
	s.counter.MarkClosed()
	return nil
}
