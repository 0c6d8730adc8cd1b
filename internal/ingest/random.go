// If you are AI: RandCamera/RandMicrophone analogues from original_source's
// sensor.py (Sensor subclasses that fill their shared frame with
// np.random.randint output). Go has no numpy; math/rand/v2 fills the same
// role, and the shape/dtype come from the topic descriptor instead of being
// hardcoded per sensor class.
package ingest

import (
	"context"
	"math/rand/v2"
	"time"

	"framebus/internal/frame"
)

// randomProducer fills a frame-sized buffer with pseudo-random bytes at a
// fixed cadence, standing in for a live device in tests and demos.
type randomProducer struct {
	desc     frame.Descriptor
	interval time.Duration
	seq      uint64
}

// NewRandomCamera mirrors original_source's RandCamera: uniform random
// bytes at rateHz, timestamped with a monotonically increasing sequence
// number (the core treats the timestamp as opaque, spec.md §3).
func NewRandomCamera(desc frame.Descriptor, rateHz float64) Producer {
	return &randomProducer{desc: desc, interval: hzToInterval(rateHz)}
}

// NewRandomMicrophone mirrors original_source's RandMicrophone. It is the
// same generator as NewRandomCamera; the two constructors exist because the
// original ties the generator to its use, not because the logic differs.
func NewRandomMicrophone(desc frame.Descriptor, rateHz float64) Producer {
	return &randomProducer{desc: desc, interval: hzToInterval(rateHz)}
}

func hzToInterval(rateHz float64) time.Duration {
	if rateHz <= 0 {
		rateHz = 30
	}
	return time.Duration(float64(time.Second) / rateHz)
}

func (p *randomProducer) NextFrame(ctx context.Context) ([]byte, uint64, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case <-time.After(p.interval):
	}

	buf := make([]byte, descriptorSize(p.desc))
	for i := range buf {
		buf[i] = byte(rand.IntN(256))
	}
	p.seq++
	return buf, p.seq, nil
}
