// If you are AI: This file implements the publisher façade (spec.md §4.4),
// a thin wrapper over internal/topic that adds nothing beyond construction
// and the publish/shutdown entry points — the interesting logic already
// lives in Topic.
package publisher

import (
	"context"

	"framebus/internal/frame"
	"framebus/internal/topic"
)

// Publisher is the producer-side handle for one topic.
type Publisher struct {
	topic *topic.Topic
}

// New creates and opens a topic for desc, ready to accept subscribers and
// publications.
func New(desc frame.Descriptor) (*Publisher, error) {
	t, err := topic.New(desc)
	if err != nil {
		return nil, err
	}
	return &Publisher{topic: t}, nil
}

// Descriptor returns the topic's immutable shape/dtype declaration.
func (p *Publisher) Descriptor() frame.Descriptor { return p.topic.Descriptor() }

// Name returns the topic's name, satisfying monitor.TopicStatus.
func (p *Publisher) Name() string { return p.topic.Descriptor().Name }

// SubscriberCount returns the number of currently signed-in subscribers.
func (p *Publisher) SubscriberCount() int { return p.topic.SubscriberCount() }

// Publish writes payload as the topic's new frame and wakes every
// registered subscriber.
func (p *Publisher) Publish(ctx context.Context, payload []byte, timestamp uint64) error {
	return p.topic.Publish(ctx, payload, timestamp)
}

// Shutdown stops the control listener, unlinks every per-subscriber wake
// semaphore, then the region semaphores and shared memory regions.
func (p *Publisher) Shutdown() error {
	return p.topic.Shutdown()
}
