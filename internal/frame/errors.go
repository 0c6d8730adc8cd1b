// If you are AI: This file defines the sentinel error kinds the core surfaces,
// per spec.md §7. UnsupportedDtype lives in package dtype since it is raised
// by dtype.Parse; it is re-exported here so callers only need to import one
// errors surface.

package frame

import (
	"errors"

	"framebus/internal/dtype"
)

var (
	// ErrShapeMismatch is returned by Publish when the payload length does
	// not equal the topic's declared FrameBytes.
	ErrShapeMismatch = errors.New("frame: payload length does not match declared shape")

	// ErrUnsupportedDtype is returned when a metadata record names a dtype
	// outside the closed set. Re-exported from package dtype.
	ErrUnsupportedDtype = dtype.ErrUnsupportedDtype

	// ErrRegistrationLost is returned to a subscriber whose wake semaphore
	// vanished (the publisher unlinked it, or signin was never acknowledged).
	ErrRegistrationLost = errors.New("frame: subscriber registration lost")

	// ErrResourceExists names the stale-named-resource condition. No backend
	// returns it: shm/sem creation unlinks a stale resource and recreates it
	// directly, so the condition never escapes to a caller.
	ErrResourceExists = errors.New("frame: named resource already exists")

	// ErrChannelClosed is returned by a control channel's Send/Receive when
	// the underlying transport has failed. The listener goroutine logs and
	// exits; it does not poison the topic.
	ErrChannelClosed = errors.New("frame: control channel closed")

	// ErrMetadataOverflow is returned by EncodeMetadata when the shape or
	// dtype string does not fit the fixed-width record.
	ErrMetadataOverflow = errors.New("frame: metadata record overflow")

	// ErrMetadataCorrupt is returned by DecodeMetadata when the record is
	// the wrong size or missing its separator.
	ErrMetadataCorrupt = errors.New("frame: metadata record corrupt")
)
