// If you are AI: This file implements Topic, which ties the frame region,
// subscriber registry, and control channel into the publisher-side object
// described by spec.md §4.4 steps 1-4. Subscriber-side attachment lives in
// internal/svc/subscriber, which opens the same three pieces independently.
package topic

import (
	"context"
	"fmt"
	"log"

	"framebus/internal/frame"
	"framebus/internal/ipc/control"
	"framebus/internal/registry"
)

// Topic is the publisher-side aggregate for one named stream: the shared
// frame region, the subscriber registry, and a control-channel listener
// goroutine that drives signin/signout.
type Topic struct {
	desc     frame.Descriptor
	region   *registry.FrameRegion
	subs     *registry.SubscriberRegistry
	control  control.Channel
	cancel   context.CancelFunc
	listenWG chan struct{}
}

// New performs spec.md §4.4's construction sequence: create the four
// regions and semaphores, write metadata, open the control channel in
// server mode, and start the control listener goroutine.
func New(desc frame.Descriptor) (*Topic, error) {
	region, err := registry.Create(desc)
	if err != nil {
		return nil, fmt.Errorf("topic: create frame region: %w", err)
	}

	ch, err := control.Probe().Listen(desc.Name)
	if err != nil {
		_ = region.Unlink()
		return nil, fmt.Errorf("topic: listen control channel: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &Topic{
		desc:     desc,
		region:   region,
		subs:     registry.NewSubscriberRegistry(desc.Name),
		control:  ch,
		cancel:   cancel,
		listenWG: make(chan struct{}),
	}
	go t.listen(ctx)
	return t, nil
}

// listen is the control listener thread (spec.md §4.3): it repeatedly
// receives one message and invokes signin/signout on the registry.
func (t *Topic) listen(ctx context.Context) {
	defer close(t.listenWG)
	for {
		msg, err := t.control.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("topic %s: control receive: %v", t.desc.Name, err)
			return
		}
		switch msg.Command {
		case control.CommandSignin:
			if err := t.subs.Signin(msg.SubscriberID); err != nil {
				log.Printf("topic %s: signin %s: %v", t.desc.Name, msg.SubscriberID, err)
			}
		case control.CommandSignout:
			t.subs.Signout(msg.SubscriberID)
		default:
			log.Printf("topic %s: unknown control command %q", t.desc.Name, msg.Command)
		}
	}
}

// Descriptor returns the topic's immutable shape/dtype declaration.
func (t *Topic) Descriptor() frame.Descriptor { return t.desc }

// SubscriberCount returns the number of currently signed-in subscribers.
func (t *Topic) SubscriberCount() int { return t.subs.Count() }

// Publish writes payload as the new frame and fans the wake signal out to
// every registered subscriber (spec.md §4.4 publish).
func (t *Topic) Publish(ctx context.Context, payload []byte, timestamp uint64) error {
	if err := t.region.Publish(ctx, payload, timestamp); err != nil {
		return err
	}
	t.subs.FanoutSignal()
	return nil
}

// Shutdown closes the control channel and waits for the listener to stop,
// then unlinks all per-subscriber wake semaphores, and finally the three
// region semaphores and four shared memory regions (spec.md §4.4 shutdown).
func (t *Topic) Shutdown() error {
	t.cancel()
	_ = t.control.Close()
	<-t.listenWG
	t.subs.Shutdown()
	return t.region.Unlink()
}
