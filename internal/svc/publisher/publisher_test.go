package publisher

import (
	"context"
	"testing"
	"time"

	"framebus/internal/dtype"
	"framebus/internal/frame"
	"framebus/internal/svc/subscriber"
)

func testDescriptor(name string) frame.Descriptor {
	return frame.Descriptor{Name: name, Shape: []int{2, 2}, DType: dtype.Uint8}
}

func TestSinglePublisherSingleSubscriber(t *testing.T) {
	desc := testDescriptor("pub-single")
	pub, err := New(desc)
	if err != nil {
		t.Fatalf("New publisher: %v", err)
	}
	defer pub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub, err := subscriber.New(ctx, desc.Name, subscriber.Config{RingLength: 4})
	if err != nil {
		t.Fatalf("New subscriber: %v", err)
	}
	defer sub.Close()

	waitForSubscriberCount(t, pub, 1)

	payload := []byte{1, 2, 3, 4}
	if err := pub.Publish(ctx, payload, 99); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	f, err := sub.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(f.Bytes) != string(payload) || f.Timestamp != 99 {
		t.Fatalf("got %+v, want bytes=%v timestamp=99", f, payload)
	}
}

func TestFanOutToMultipleSubscribers(t *testing.T) {
	desc := testDescriptor("pub-fanout")
	pub, err := New(desc)
	if err != nil {
		t.Fatalf("New publisher: %v", err)
	}
	defer pub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	const n = 3
	subs := make([]*subscriber.Subscriber, n)
	for i := range subs {
		s, err := subscriber.New(ctx, desc.Name, subscriber.Config{RingLength: 2})
		if err != nil {
			t.Fatalf("New subscriber %d: %v", i, err)
		}
		defer s.Close()
		subs[i] = s
	}

	waitForSubscriberCount(t, pub, n)

	payload := []byte{5, 6, 7, 8}
	if err := pub.Publish(ctx, payload, 1); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for i, s := range subs {
		f, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("subscriber %d Read: %v", i, err)
		}
		if string(f.Bytes) != string(payload) {
			t.Fatalf("subscriber %d got %v, want %v", i, f.Bytes, payload)
		}
	}
}

func TestCloseSignsOutOfPublisher(t *testing.T) {
	desc := testDescriptor("pub-signout")
	pub, err := New(desc)
	if err != nil {
		t.Fatalf("New publisher: %v", err)
	}
	defer pub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub, err := subscriber.New(ctx, desc.Name, subscriber.Config{RingLength: 1})
	if err != nil {
		t.Fatalf("New subscriber: %v", err)
	}
	waitForSubscriberCount(t, pub, 1)

	sub.StartWorker(ctx)
	if err := sub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	waitForSubscriberCount(t, pub, 0)
}

func TestLatestWinsUnderSlowConsumer(t *testing.T) {
	desc := testDescriptor("pub-latest-wins")
	pub, err := New(desc)
	if err != nil {
		t.Fatalf("New publisher: %v", err)
	}
	defer pub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub, err := subscriber.New(ctx, desc.Name, subscriber.Config{RingLength: 4})
	if err != nil {
		t.Fatalf("New subscriber: %v", err)
	}
	defer sub.Close()
	waitForSubscriberCount(t, pub, 1)

	sub.StartWorker(ctx)

	for i := 0; i < 5; i++ {
		payload := []byte{byte(i), byte(i), byte(i), byte(i)}
		if err := pub.Publish(ctx, payload, uint64(i)); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}

	deadline := time.After(time.Second)
	for {
		f, ok := sub.LatestSnapshot()
		if ok && f.Timestamp == 4 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("worker never observed the latest publication, last seen timestamp=%d", f.Timestamp)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func waitForSubscriberCount(t *testing.T, pub *Publisher, want int) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		if pub.SubscriberCount() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("subscriber count never reached %d, stuck at %d", want, pub.SubscriberCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
}
