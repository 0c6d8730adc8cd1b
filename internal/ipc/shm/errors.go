package shm

import "errors"

// ErrRegionSizeMismatch is returned by the in-process backend's Open when a
// region of the requested name exists but was created with a different size
// than asked for. The /dev/shm backend reports the same condition as
// ipc.ErrSizeMismatch.
var ErrRegionSizeMismatch = errors.New("shm: existing region size mismatch")
