// If you are AI: This file implements the shared frame region and its
// reader/writer lock (spec.md §4.1): a single-slot, multiple-reader/
// single-writer cell backed by four named regions (frame, timestamp,
// counter, metadata). The timestamp region is co-mutated with the frame
// per spec.md §5, so it has no semaphore of its own; frame, counter, and
// metadata each have one. The reader-entry protocol below is copied
// verbatim from spec.md §4.1's step list; do not "simplify" it, the
// 0→1 / 1→0 transitions are load-bearing for I1.
package registry

import (
	"context"
	"encoding/binary"
	"fmt"

	"framebus/internal/dtype"
	"framebus/internal/frame"
	"framebus/internal/ipc/sem"
	"framebus/internal/ipc/shm"
)

// Resource name suffixes, spec.md §6.
const (
	suffixFrame     = "ram"
	suffixTimestamp = "stm"
	suffixCounter   = "cnt"
	suffixMetadata  = "mat"
)

func regionName(topic, suffix string) string { return suffix + "-" + topic }
func semName(topic, suffix string) string    { return suffix + "-sem-" + topic }

// FrameRegion owns the four shared regions and three region semaphores
// (frame, counter, metadata) for one topic. It is created once by the publisher and opened independently
// by each subscriber.
type FrameRegion struct {
	topic      string
	desc       frame.Descriptor
	frameRgn   shm.Region
	tsRgn      shm.Region
	counterRgn shm.Region
	metaRgn    shm.Region
	frameSem   sem.Semaphore
	counterSem sem.Semaphore
	metaSem    sem.Semaphore
}

// Create allocates the four regions and three semaphores for desc and writes the
// metadata record. Only the publisher calls this.
func Create(desc frame.Descriptor) (*FrameRegion, error) {
	shmBackend := shm.Probe()
	semBackend := sem.Probe()

	frameRgn, err := shmBackend.Create(regionName(desc.Name, suffixFrame), desc.FrameBytes())
	if err != nil {
		return nil, fmt.Errorf("registry: create frame region: %w", err)
	}
	tsRgn, err := shmBackend.Create(regionName(desc.Name, suffixTimestamp), 8)
	if err != nil {
		return nil, fmt.Errorf("registry: create timestamp region: %w", err)
	}
	counterRgn, err := shmBackend.Create(regionName(desc.Name, suffixCounter), 4)
	if err != nil {
		return nil, fmt.Errorf("registry: create counter region: %w", err)
	}
	metaRgn, err := shmBackend.Create(regionName(desc.Name, suffixMetadata), frame.MetadataWidth)
	if err != nil {
		return nil, fmt.Errorf("registry: create metadata region: %w", err)
	}

	frameSem, err := semBackend.Create(semName(desc.Name, suffixFrame), 1)
	if err != nil {
		return nil, fmt.Errorf("registry: create frame semaphore: %w", err)
	}
	counterSem, err := semBackend.Create(semName(desc.Name, suffixCounter), 1)
	if err != nil {
		return nil, fmt.Errorf("registry: create counter semaphore: %w", err)
	}
	metaSem, err := semBackend.Create(semName(desc.Name, suffixMetadata), 1)
	if err != nil {
		return nil, fmt.Errorf("registry: create metadata semaphore: %w", err)
	}

	r := &FrameRegion{
		topic:      desc.Name,
		desc:       desc,
		frameRgn:   frameRgn,
		tsRgn:      tsRgn,
		counterRgn: counterRgn,
		metaRgn:    metaRgn,
		frameSem:   frameSem,
		counterSem: counterSem,
		metaSem:    metaSem,
	}
	if err := r.writeMetadata(); err != nil {
		return nil, err
	}
	return r, nil
}

// Open attaches to an existing topic's regions and semaphores, reading the
// metadata record to discover shape and dtype. Subscribers call this; it
// polls (via the shm/sem backends' own back-off) until the publisher has
// created everything.
func Open(ctx context.Context, topic string) (*FrameRegion, error) {
	shmBackend := shm.Probe()
	semBackend := sem.Probe()

	metaRgn, err := shmBackend.Open(ctx, regionName(topic, suffixMetadata), frame.MetadataWidth)
	if err != nil {
		return nil, fmt.Errorf("registry: open metadata region: %w", err)
	}
	metaSem, err := semBackend.Open(ctx, semName(topic, suffixMetadata))
	if err != nil {
		return nil, fmt.Errorf("registry: open metadata semaphore: %w", err)
	}

	r := &FrameRegion{topic: topic, metaRgn: metaRgn, metaSem: metaSem}
	shape, dt, err := r.readMetadataLocked()
	if err != nil {
		return nil, err
	}
	desc := frame.Descriptor{Name: topic, Shape: shape, DType: dt}

	frameRgn, err := shmBackend.Open(ctx, regionName(topic, suffixFrame), desc.FrameBytes())
	if err != nil {
		return nil, fmt.Errorf("registry: open frame region: %w", err)
	}
	tsRgn, err := shmBackend.Open(ctx, regionName(topic, suffixTimestamp), 8)
	if err != nil {
		return nil, fmt.Errorf("registry: open timestamp region: %w", err)
	}
	counterRgn, err := shmBackend.Open(ctx, regionName(topic, suffixCounter), 4)
	if err != nil {
		return nil, fmt.Errorf("registry: open counter region: %w", err)
	}
	frameSem, err := semBackend.Open(ctx, semName(topic, suffixFrame))
	if err != nil {
		return nil, fmt.Errorf("registry: open frame semaphore: %w", err)
	}
	counterSem, err := semBackend.Open(ctx, semName(topic, suffixCounter))
	if err != nil {
		return nil, fmt.Errorf("registry: open counter semaphore: %w", err)
	}

	r.desc = desc
	r.frameRgn = frameRgn
	r.tsRgn = tsRgn
	r.counterRgn = counterRgn
	r.frameSem = frameSem
	r.counterSem = counterSem
	return r, nil
}

// Descriptor returns the topic's shape/dtype declaration.
func (r *FrameRegion) Descriptor() frame.Descriptor { return r.desc }

func (r *FrameRegion) writeMetadata() error {
	buf, err := frame.EncodeMetadata(r.desc.Shape, r.desc.DType)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := r.metaSem.Acquire(ctx); err != nil {
		return err
	}
	defer r.metaSem.Release()
	copy(r.metaRgn.Bytes(), buf)
	return nil
}

func (r *FrameRegion) readMetadataLocked() ([]int, dtype.Type, error) {
	ctx := context.Background()
	if err := r.metaSem.Acquire(ctx); err != nil {
		return nil, 0, err
	}
	defer r.metaSem.Release()
	buf := make([]byte, frame.MetadataWidth)
	copy(buf, r.metaRgn.Bytes())
	return frame.DecodeMetadata(buf)
}

// Publish is the publisher-only write path (spec.md §4.1 publish).
func (r *FrameRegion) Publish(ctx context.Context, payload []byte, timestamp uint64) error {
	if len(payload) != r.desc.FrameBytes() {
		return fmt.Errorf("%w: got %d bytes, want %d", frame.ErrShapeMismatch, len(payload), r.desc.FrameBytes())
	}
	if err := r.frameSem.Acquire(ctx); err != nil {
		return err
	}
	defer r.frameSem.Release()
	copy(r.frameRgn.Bytes(), payload)
	binary.LittleEndian.PutUint64(r.tsRgn.Bytes(), timestamp)
	return nil
}

// AcquireRead runs the reader-entry half of the protocol and returns a
// cloned snapshot of the current frame. It is the only place a subscriber
// touches the frame and timestamp regions.
func (r *FrameRegion) AcquireRead(ctx context.Context) (frame.Frame, error) {
	if err := r.counterSem.Acquire(ctx); err != nil {
		return frame.Frame{}, err
	}
	n := readCounter(r.counterRgn.Bytes()) + 1
	writeCounter(r.counterRgn.Bytes(), n)
	becameReader := n == 1
	r.counterSem.Release()

	if becameReader {
		if err := r.frameSem.Acquire(ctx); err != nil {
			return frame.Frame{}, err
		}
	}

	payload := make([]byte, len(r.frameRgn.Bytes()))
	copy(payload, r.frameRgn.Bytes())
	ts := binary.LittleEndian.Uint64(r.tsRgn.Bytes())

	if err := r.counterSem.Acquire(ctx); err != nil {
		return frame.Frame{}, err
	}
	n = readCounter(r.counterRgn.Bytes()) - 1
	writeCounter(r.counterRgn.Bytes(), n)
	lastReader := n == 0
	r.counterSem.Release()

	if lastReader {
		r.frameSem.Release()
	}

	return frame.Frame{Bytes: payload, Timestamp: ts}, nil
}

func readCounter(buf []byte) uint32  { return binary.LittleEndian.Uint32(buf) }
func writeCounter(buf []byte, v uint32) { binary.LittleEndian.PutUint32(buf, v) }

// Close detaches this process's handles without removing the named
// resources. Subscribers call this on shutdown.
func (r *FrameRegion) Close() error {
	_ = r.frameRgn.Close()
	_ = r.tsRgn.Close()
	_ = r.counterRgn.Close()
	_ = r.metaRgn.Close()
	_ = r.frameSem.Close()
	_ = r.counterSem.Close()
	_ = r.metaSem.Close()
	return nil
}

// Unlink removes every named resource. Only the publisher calls this, as
// the final step of shutdown (spec.md §4.4).
func (r *FrameRegion) Unlink() error {
	_ = r.frameSem.Unlink()
	_ = r.counterSem.Unlink()
	_ = r.metaSem.Unlink()
	_ = r.frameRgn.Unlink()
	_ = r.tsRgn.Unlink()
	_ = r.counterRgn.Unlink()
	_ = r.metaRgn.Unlink()
	return nil
}
