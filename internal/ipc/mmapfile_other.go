//go:build !linux

// If you are AI: Non-Linux stub. /dev/shm-backed named resources are a Linux
// mechanism; other platforms always fall back to the in-process backends in
// package shm/sem/control.
package ipc

import "errors"

// errUnavailable is returned by every function here; callers only reach them
// after Available() has already reported false.
var errUnavailable = errors.New("ipc: /dev/shm backend unavailable on this platform")

// Available always returns false outside Linux.
func Available() bool { return false }

func CreateMmap(name string, size int) ([]byte, error) {
	return nil, errUnavailable
}

func OpenMmap(name string, size int) (data []byte, ok bool, err error) {
	return nil, false, errUnavailable
}

func CloseMmap(data []byte) error { return nil }

func Unlink(name string) error { return nil }
