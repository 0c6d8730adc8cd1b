//go:build linux

// If you are AI: This file is the single place that talks to the kernel for
// every named resource in the frame bus: the four region files, the
// per-subscriber wake-semaphore counters, and the control-channel mailbox
// all resolve to a file under /dev/shm, mmap'd with golang.org/x/sys/unix.
// /dev/shm is tmpfs-backed on every mainstream Linux distribution, which is
// exactly the mechanism glibc's shm_open(3) uses, so this matches the
// Python original's posix_ipc.SharedMemory semantics without requiring cgo.
package ipc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ShmDir is the directory backing named shared resources.
const ShmDir = "/dev/shm/"

// Available reports whether /dev/shm is present and writable.
func Available() bool {
	return unix.Access(ShmDir, unix.W_OK) == nil
}

// CreateMmap creates a new zero-filled file of size bytes under ShmDir and
// returns its mapped bytes. A stale file of the same name (left behind by a
// crashed previous run) is unlinked and recreated rather than reused.
func CreateMmap(name string, size int) ([]byte, error) {
	path := ShmDir + name

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL, 0o600)
	if err != nil {
		if err != unix.EEXIST {
			return nil, fmt.Errorf("ipc: create %s: %w", path, err)
		}
		if rmErr := unix.Unlink(path); rmErr != nil {
			return nil, fmt.Errorf("ipc: unlink stale %s: %w", path, rmErr)
		}
		fd, err = unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL, 0o600)
		if err != nil {
			return nil, fmt.Errorf("ipc: recreate %s: %w", path, err)
		}
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		return nil, fmt.Errorf("ipc: truncate %s: %w", path, err)
	}

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("ipc: mmap %s: %w", path, err)
	}
	return data, nil
}

// OpenMmap attaches to an existing file under ShmDir. ok is false with a nil
// error when the file does not exist yet — the caller polls.
func OpenMmap(name string, size int) (data []byte, ok bool, err error) {
	path := ShmDir + name

	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		if err == unix.ENOENT {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("ipc: open %s: %w", path, err)
	}
	defer unix.Close(fd)

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, false, fmt.Errorf("ipc: stat %s: %w", path, err)
	}
	if int(st.Size) != size {
		return nil, false, fmt.Errorf("%w: %s (got %d, want %d)", ErrSizeMismatch, path, st.Size, size)
	}

	data, err = unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, false, fmt.Errorf("ipc: mmap %s: %w", path, err)
	}
	return data, true, nil
}

// CloseMmap unmaps data obtained from CreateMmap or OpenMmap.
func CloseMmap(data []byte) error {
	if data == nil {
		return nil
	}
	return unix.Munmap(data)
}

// Unlink removes the named file under ShmDir.
func Unlink(name string) error {
	err := unix.Unlink(ShmDir + name)
	if err == unix.ENOENT {
		return nil
	}
	return err
}
