// If you are AI: This package holds the producer adapters spec.md §1
// explicitly places out of scope for the core ("Device-specific ingest...
// supply (payload_bytes, timestamp) pairs to a publisher"). They exist here
// only so framebusd's `serve` subcommand has something to publish; nothing
// in internal/registry, internal/topic, or internal/svc depends on this
// package.
package ingest

import (
	"context"
	"fmt"

	"framebus/internal/frame"
)

// Producer supplies frames to a publisher. NextFrame blocks until the next
// frame is ready or ctx is done.
type Producer interface {
	NextFrame(ctx context.Context) (payload []byte, timestamp uint64, err error)
}

// descriptorSize is a small helper shared by the adapters below: the byte
// size a Producer must fill per call, for a given topic descriptor.
func descriptorSize(desc frame.Descriptor) int { return desc.FrameBytes() }

// Spec describes which adapter to construct for a topic; it mirrors
// config.IngestConfig without internal/ingest importing internal/config
// (config already depends on nothing here, and should stay that way).
type Spec struct {
	Kind   string
	Path   string
	RateHz float64
}

// New constructs the Producer named by spec for desc.
func New(desc frame.Descriptor, spec Spec) (Producer, error) {
	switch spec.Kind {
	case "random_camera":
		return NewRandomCamera(desc, spec.RateHz), nil
	case "random_microphone":
		return NewRandomMicrophone(desc, spec.RateHz), nil
	case "image_file":
		return NewImageFile(desc, spec.Path, spec.RateHz)
	default:
		return nil, fmt.Errorf("ingest: unknown kind %q", spec.Kind)
	}
}
