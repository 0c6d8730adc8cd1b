// If you are AI: This file implements the subscriber façade (spec.md §4.5):
// construction, read(), close(), and the background worker that feeds a
// bounded local ring and a single-slot "data available" signal.
package subscriber

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"framebus/internal/frame"
	"framebus/internal/ipc/control"
	"framebus/internal/ipc/sem"
	"framebus/internal/registry"
)

// Config controls the background worker's local buffering.
type Config struct {
	// RingLength is B, the fixed length of the local ring (spec.md §4.5).
	RingLength int
	// Concatenate selects Latest's return shape: when true, Latest returns
	// the full B-frame stack; when false, just the most recent frame.
	Concatenate bool
}

// Subscriber is one process's attachment to a topic.
type Subscriber struct {
	id     string
	topic  string
	region *registry.FrameRegion
	ctl    control.Channel
	wake   sem.Semaphore
	cfg    Config

	ring *localRing

	workerCancel context.CancelFunc
	workerDone   chan struct{}

	availMu   sync.Mutex
	availCond *sync.Cond
	availSeq  uint64
	seenSeq   uint64 // availSeq as of the last Latest return
}

// New performs spec.md §4.5's construction sequence: open the four regions,
// discover shape/dtype from the metadata record, open the control channel
// in client mode, and sign in.
func New(ctx context.Context, topicName string, cfg Config) (*Subscriber, error) {
	region, err := registry.Open(ctx, topicName)
	if err != nil {
		return nil, fmt.Errorf("subscriber: open frame region: %w", err)
	}

	ctl, err := control.Probe().Dial(ctx, topicName)
	if err != nil {
		region.Close()
		return nil, fmt.Errorf("subscriber: dial control channel: %w", err)
	}

	id := uuid.NewString()
	if err := ctl.Send(ctx, control.Message{Command: control.CommandSignin, SubscriberID: id}); err != nil {
		ctl.Close()
		region.Close()
		return nil, fmt.Errorf("subscriber: send signin: %w", err)
	}

	wake, err := registry.OpenWakeSemaphore(ctx, topicName, id)
	if err != nil {
		ctl.Close()
		region.Close()
		return nil, fmt.Errorf("subscriber: open wake semaphore: %w", err)
	}

	if cfg.RingLength < 1 {
		cfg.RingLength = 1
	}

	s := &Subscriber{
		id:         id,
		topic:      topicName,
		region:     region,
		ctl:        ctl,
		wake:       wake,
		cfg:        cfg,
		ring:       newLocalRing(cfg.RingLength, region.Descriptor().FrameBytes()),
		workerDone: make(chan struct{}),
	}
	s.availCond = sync.NewCond(&s.availMu)
	return s, nil
}

// ID returns the subscriber's identifier, as signed in with the publisher.
func (s *Subscriber) ID() string { return s.id }

// Read performs spec.md §4.5's read(): acquire the wake semaphore, run the
// reader-entry protocol, and return the frame. It fails with
// ErrRegistrationLost if the publisher has unlinked the wake semaphore.
func (s *Subscriber) Read(ctx context.Context) (frame.Frame, error) {
	if err := s.wake.Acquire(ctx); err != nil {
		if err == sem.ErrClosed {
			return frame.Frame{}, frame.ErrRegistrationLost
		}
		return frame.Frame{}, err
	}
	f, err := s.region.AcquireRead(ctx)
	if err != nil {
		return frame.Frame{}, err
	}
	return f, nil
}

// StartWorker launches the background goroutine that calls Read in a loop
// and feeds the local ring (spec.md §4.5 "Client worker"). It is optional:
// callers that only want synchronous Read calls need not start it.
func (s *Subscriber) StartWorker(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	s.workerCancel = cancel
	go s.runWorker(workerCtx)
}

func (s *Subscriber) runWorker(ctx context.Context) {
	defer close(s.workerDone)
	for {
		f, err := s.Read(ctx)
		if err != nil {
			return
		}
		s.ring.Push(f)
		s.availMu.Lock()
		s.availSeq++
		s.availCond.Broadcast()
		s.availMu.Unlock()
	}
}

// Latest returns the most recent frame, blocking until the worker has
// delivered one the caller has not already observed, or until ctx is done.
// When cfg.Concatenate is set, Latest instead returns the full B-frame
// stack as a single frame: bytes are the concatenation of each ring slot in
// insertion order, and the timestamp is the most recent frame's.
func (s *Subscriber) Latest(ctx context.Context) (frame.Frame, error) {
	lastSeen, err := s.waitForNewData(ctx)
	if err != nil {
		return frame.Frame{}, err
	}
	_ = lastSeen

	if !s.cfg.Concatenate {
		f, _ := s.ring.Latest()
		return f, nil
	}

	stack := s.ring.Stack()
	out := frame.Frame{}
	for _, f := range stack {
		out.Bytes = append(out.Bytes, f.Bytes...)
		out.Timestamp = f.Timestamp
	}
	return out, nil
}

// LatestSnapshot returns the most recently pushed frame without blocking,
// and whether the worker has pushed anything yet.
func (s *Subscriber) LatestSnapshot() (frame.Frame, bool) {
	return s.ring.Latest()
}

// waitForNewData blocks until the worker's delivery sequence advances past
// the sequence the previous call returned, implementing the single-slot
// "data available" signal described in spec.md §4.5.
func (s *Subscriber) waitForNewData(ctx context.Context) (uint64, error) {
	s.availMu.Lock()
	start := s.seenSeq
	for s.availSeq == start {
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				s.availMu.Lock()
				s.availCond.Broadcast()
				s.availMu.Unlock()
			case <-done:
			}
		}()
		s.availCond.Wait()
		close(done)
		if ctx.Err() != nil {
			s.availMu.Unlock()
			return 0, ctx.Err()
		}
	}
	seq := s.availSeq
	s.seenSeq = seq
	s.availMu.Unlock()
	return seq, nil
}

// Close performs spec.md §4.5's close(): send signout, stop the worker with
// a bounded join timeout, and release local handles regardless of whether
// the worker exited in time (spec.md §5 "Cancellation and timeouts").
func (s *Subscriber) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.ctl.Send(ctx, control.Message{Command: control.CommandSignout, SubscriberID: s.id})

	if s.workerCancel != nil {
		s.workerCancel()
		select {
		case <-s.workerDone:
		case <-time.After(time.Second):
		}
	}

	_ = s.wake.Close()
	_ = s.ctl.Close()
	return s.region.Close()
}
