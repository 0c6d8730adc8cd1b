package registry

import (
	"context"
	"testing"
	"time"

	"framebus/internal/dtype"
	"framebus/internal/frame"
)

func testDescriptor(name string) frame.Descriptor {
	return frame.Descriptor{Name: name, Shape: []int{2, 2}, DType: dtype.Uint8}
}

func TestFrameRegionPublishAndRead(t *testing.T) {
	desc := testDescriptor("reg-publish")
	pub, err := Create(desc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer pub.Unlink()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	payload := []byte{1, 2, 3, 4}
	if err := pub.Publish(ctx, payload, 42); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	f, err := pub.AcquireRead(ctx)
	if err != nil {
		t.Fatalf("AcquireRead: %v", err)
	}
	if string(f.Bytes) != string(payload) || f.Timestamp != 42 {
		t.Fatalf("got %+v, want bytes=%v timestamp=42", f, payload)
	}
}

func TestFrameRegionShapeMismatch(t *testing.T) {
	desc := testDescriptor("reg-mismatch")
	pub, err := Create(desc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer pub.Unlink()

	ctx := context.Background()
	if err := pub.Publish(ctx, []byte{1, 2, 3}, 1); err == nil {
		t.Fatal("expected ErrShapeMismatch for undersized payload")
	}
}

func TestFrameRegionConcurrentReaders(t *testing.T) {
	desc := testDescriptor("reg-concurrent")
	pub, err := Create(desc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer pub.Unlink()

	ctx := context.Background()
	if err := pub.Publish(ctx, []byte{9, 9, 9, 9}, 7); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	const readers = 8
	errs := make(chan error, readers)
	for i := 0; i < readers; i++ {
		go func() {
			_, err := pub.AcquireRead(ctx)
			errs <- err
		}()
	}
	for i := 0; i < readers; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("reader %d: %v", i, err)
		}
	}
	if n := readCounter(pub.counterRgn.Bytes()); n != 0 {
		t.Fatalf("reader counter not drained to zero: %d", n)
	}
}

func TestSubscriberRegistrySigninFanoutSignout(t *testing.T) {
	topic := "reg-subs"
	reg := NewSubscriberRegistry(topic)

	if err := reg.Signin("sub-a"); err != nil {
		t.Fatalf("Signin: %v", err)
	}
	if reg.Count() != 1 {
		t.Fatalf("Count = %d, want 1", reg.Count())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	wake, err := OpenWakeSemaphore(ctx, topic, "sub-a")
	if err != nil {
		t.Fatalf("openWakeSemaphore: %v", err)
	}

	reg.FanoutSignal()
	if err := wake.Acquire(ctx); err != nil {
		t.Fatalf("Acquire after fanout: %v", err)
	}

	reg.Signout("sub-a")
	if reg.Count() != 0 {
		t.Fatalf("Count after signout = %d, want 0", reg.Count())
	}
	if err := wake.Acquire(ctx); err == nil {
		t.Fatal("expected ErrClosed after signout")
	}
}

func TestFanoutSaturationRuleCoalesces(t *testing.T) {
	topic := "reg-saturate"
	reg := NewSubscriberRegistry(topic)
	if err := reg.Signin("sub-b"); err != nil {
		t.Fatalf("Signin: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	wake, err := OpenWakeSemaphore(ctx, topic, "sub-b")
	if err != nil {
		t.Fatalf("openWakeSemaphore: %v", err)
	}

	// Two publications before the subscriber wakes must coalesce into a
	// single pending count, not saturate past 1.
	reg.FanoutSignal()
	reg.FanoutSignal()

	if v, ok := wake.Value(); ok && v != 1 {
		t.Fatalf("wake semaphore count = %d, want 1", v)
	}
}
