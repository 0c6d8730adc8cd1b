// If you are AI: This file implements Backend over an mmap'd 4-byte counter
// under /dev/shm, using internal/ipc's helpers.
package sem

import (
	"context"
	"unsafe"

	"framebus/internal/ipc"
)

const counterSize = 4

type posixBackend struct{}

func newPosixBackend() Backend { return posixBackend{} }

func (posixBackend) Available() bool { return ipc.Available() }

func (posixBackend) Create(name string, initial uint32) (Semaphore, error) {
	data, err := ipc.CreateMmap(name, counterSize)
	if err != nil {
		return nil, err
	}
	c := counter{ptr: (*uint32)(unsafe.Pointer(&data[0]))}
	*c.ptr = initial
	return &posixSem{name: name, data: data, counter: c}, nil
}

func (posixBackend) Open(ctx context.Context, name string) (Semaphore, error) {
	return pollBackoff(ctx, func() (Semaphore, bool, error) {
		data, ok, err := ipc.OpenMmap(name, counterSize)
		if err != nil || !ok {
			return nil, false, err
		}
		c := counter{ptr: (*uint32)(unsafe.Pointer(&data[0]))}
		return &posixSem{name: name, data: data, counter: c}, true, nil
	})
}

// posixSem is a Semaphore backed by a counter living on an mmap'd page.
type posixSem struct {
	name string
	data []byte
	counter
}

func (s *posixSem) Close() error { return ipc.CloseMmap(s.data) }

func (s *posixSem) Unlink() error {
	s.counter.MarkClosed()
	return ipc.Unlink(s.name)
}
