package ipc

import "errors"

// ErrSizeMismatch is returned when an existing /dev/shm-backed file is
// opened with a size different from the one it was created with.
var ErrSizeMismatch = errors.New("ipc: existing shared file size mismatch")
