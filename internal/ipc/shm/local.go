// If you are AI: This file implements the in-process fallback shm backend.
// It backs named regions with plain byte slices in a package-global table,
// guarded by a mutex. It is always available, and Probe selects it wherever
// /dev/shm is not writable; the full publisher/subscriber protocol then runs
// inside a single process.

package shm

import (
	"context"
	"sync"
)

// localBackend is a process-wide registry of named byte-slice regions.
type localBackend struct {
	mu      sync.Mutex
	regions map[string][]byte
}

var localRegistry = &localBackend{regions: make(map[string][]byte)}

func newLocalBackend() Backend { return localRegistry }

// Available always returns true: the fallback has no platform requirements.
func (b *localBackend) Available() bool { return true }

func (b *localBackend) Create(name string, size int) (Region, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A stale resource from a previous run in this process is recovered by
	// replacing it (the local backend's analogue of unlink-and-retry).
	b.regions[name] = make([]byte, size)
	return &localRegion{backend: b, name: name}, nil
}

func (b *localBackend) Open(ctx context.Context, name string, size int) (Region, error) {
	return pollBackoff(ctx, func() (Region, bool, error) {
		b.mu.Lock()
		buf, ok := b.regions[name]
		b.mu.Unlock()
		if !ok {
			return nil, false, nil
		}
		if len(buf) != size {
			return nil, false, ErrRegionSizeMismatch
		}
		return &localRegion{backend: b, name: name}, true, nil
	})
}

// localRegion is a handle onto a slot in localBackend.regions.
type localRegion struct {
	backend *localBackend
	name    string
}

func (r *localRegion) Bytes() []byte {
	r.backend.mu.Lock()
	defer r.backend.mu.Unlock()
	return r.backend.regions[r.name]
}

func (r *localRegion) Close() error { return nil }

func (r *localRegion) Unlink() error {
	r.backend.mu.Lock()
	defer r.backend.mu.Unlock()
	delete(r.backend.regions, r.name)
	return nil
}
