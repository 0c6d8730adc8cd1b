// If you are AI: This file implements Backend over internal/ipc's
// /dev/shm-backed mmap helpers. It is the "POSIX" side of the platform
// abstraction spec.md §9 calls for.

package shm

import (
	"context"

	"framebus/internal/ipc"
)

type posixBackend struct{}

func newPosixBackend() Backend { return posixBackend{} }

func (posixBackend) Available() bool { return ipc.Available() }

func (posixBackend) Create(name string, size int) (Region, error) {
	data, err := ipc.CreateMmap(name, size)
	if err != nil {
		return nil, err
	}
	return &posixRegion{name: name, data: data}, nil
}

func (posixBackend) Open(ctx context.Context, name string, size int) (Region, error) {
	return pollBackoff(ctx, func() (Region, bool, error) {
		data, ok, err := ipc.OpenMmap(name, size)
		if err != nil || !ok {
			return nil, false, err
		}
		return &posixRegion{name: name, data: data}, true, nil
	})
}

// posixRegion is a handle onto an mmap'd /dev/shm file.
type posixRegion struct {
	name string
	data []byte
}

func (r *posixRegion) Bytes() []byte { return r.data }

func (r *posixRegion) Close() error { return ipc.CloseMmap(r.data) }

func (r *posixRegion) Unlink() error { return ipc.Unlink(r.name) }
