package subscriber

import (
	"context"
	"testing"
	"time"

	"framebus/internal/dtype"
	"framebus/internal/frame"
	"framebus/internal/ipc/control"
	"framebus/internal/registry"
)

// newTestTopic creates a bare frame region and a control channel listener
// without the full topic/publisher wiring, so this package's tests drive
// signin by hand instead of importing internal/svc/publisher (whose own
// tests import this package).
type testTopic struct {
	region *registry.FrameRegion
	ctl    control.Channel
}

func newTestTopic(t *testing.T, desc frame.Descriptor) *testTopic {
	t.Helper()
	region, err := registry.Create(desc)
	if err != nil {
		t.Fatalf("registry.Create: %v", err)
	}
	ctl, err := control.Probe().Listen(desc.Name)
	if err != nil {
		t.Fatalf("control.Listen: %v", err)
	}
	return &testTopic{region: region, ctl: ctl}
}

func (tt *testTopic) handleOneSignin(ctx context.Context, t *testing.T, reg *registry.SubscriberRegistry) string {
	t.Helper()
	msg, err := tt.ctl.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if msg.Command != control.CommandSignin {
		t.Fatalf("got command %q, want signin", msg.Command)
	}
	if err := reg.Signin(msg.SubscriberID); err != nil {
		t.Fatalf("Signin: %v", err)
	}
	return msg.SubscriberID
}

func TestSubscriberDiscoversMetadataOnJoin(t *testing.T) {
	desc := frame.Descriptor{Name: "sub-discover", Shape: []int{288, 320, 1}, DType: dtype.Int16}
	tt := newTestTopic(t, desc)
	defer tt.region.Unlink()
	reg := registry.NewSubscriberRegistry(desc.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go tt.handleOneSignin(ctx, t, reg)

	sub, err := New(ctx, desc.Name, Config{RingLength: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sub.Close()

	got := sub.region.Descriptor()
	if got.DType != dtype.Int16 || len(got.Shape) != 3 || got.Shape[0] != 288 {
		t.Fatalf("discovered descriptor %+v, want shape [288 320 1] int16", got)
	}
}

func TestReadFailsAfterSignoutUnlink(t *testing.T) {
	desc := frame.Descriptor{Name: "sub-lost", Shape: []int{1}, DType: dtype.Float64}
	tt := newTestTopic(t, desc)
	defer tt.region.Unlink()
	reg := registry.NewSubscriberRegistry(desc.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go tt.handleOneSignin(ctx, t, reg)

	sub, err := New(ctx, desc.Name, Config{RingLength: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	reg.Signout(sub.id)

	if _, err := sub.Read(ctx); err != frame.ErrRegistrationLost {
		t.Fatalf("Read after signout unlink = %v, want ErrRegistrationLost", err)
	}
}

func TestConcatenateReturnsFixedLengthStack(t *testing.T) {
	desc := frame.Descriptor{Name: "sub-concat", Shape: []int{2}, DType: dtype.Uint8}
	tt := newTestTopic(t, desc)
	defer tt.region.Unlink()
	reg := registry.NewSubscriberRegistry(desc.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go tt.handleOneSignin(ctx, t, reg)

	const ringLen = 3
	sub, err := New(ctx, desc.Name, Config{RingLength: ringLen, Concatenate: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sub.Close()

	sub.StartWorker(ctx)

	for i := 0; i < ringLen; i++ {
		if err := tt.region.Publish(ctx, []byte{byte(i), byte(i)}, uint64(i)); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
		reg.FanoutSignal()
	}

	f, err := sub.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(f.Bytes) != ringLen*desc.FrameBytes() {
		t.Fatalf("stacked frame length = %d, want %d", len(f.Bytes), ringLen*desc.FrameBytes())
	}
}
