// If you are AI: This file implements the subscriber registry and fan-out
// (spec.md §4.2). The mutex-protects-the-map / snapshot-keys-before-release
// pattern is lifted from the teacher's bus.Stream.Publish: the registry lock
// must never be held across a semaphore operation, since semaphore ops can
// block.
package registry

import (
	"context"
	"fmt"
	"sync"

	"framebus/internal/ipc/sem"
)

func wakeSemName(topic, subscriberID string) string { return "sem-" + topic + "-" + subscriberID }

// SubscriberRegistry is the publisher's in-process view of attached
// subscribers. It is never shared across processes (spec.md §5).
type SubscriberRegistry struct {
	topic string

	mu      sync.Mutex
	members map[string]sem.Semaphore
}

// NewSubscriberRegistry returns an empty registry for topic.
func NewSubscriberRegistry(topic string) *SubscriberRegistry {
	return &SubscriberRegistry{topic: topic, members: make(map[string]sem.Semaphore)}
}

// Signin creates the named wake semaphore for subscriberID and adds it to
// the registry (spec.md I5: the publisher owns the semaphore). Re-signing a
// subscriber that is already present replaces its semaphore, since the
// control channel does not guarantee cross-sender ordering and a stale
// signin could in principle be delivered after a signout/signin pair.
func (r *SubscriberRegistry) Signin(subscriberID string) error {
	r.mu.Lock()
	old, existed := r.members[subscriberID]
	delete(r.members, subscriberID)
	r.mu.Unlock()

	if existed {
		_ = old.Unlink()
	}

	wake, err := sem.Probe().Create(wakeSemName(r.topic, subscriberID), 0)
	if err != nil {
		return fmt.Errorf("registry: signin %s: %w", subscriberID, err)
	}

	r.mu.Lock()
	r.members[subscriberID] = wake
	r.mu.Unlock()
	return nil
}

// Signout removes subscriberID and unlinks its wake semaphore, which wakes
// any pending Acquire in the subscriber process with ErrClosed.
func (r *SubscriberRegistry) Signout(subscriberID string) {
	r.mu.Lock()
	wake, ok := r.members[subscriberID]
	delete(r.members, subscriberID)
	r.mu.Unlock()

	if ok {
		_ = wake.Unlink()
	}
}

// FanoutSignal releases every member's wake semaphore under the saturation
// rule: TryReleaseEdge only releases from 0, so a burst of publications
// before a subscriber wakes coalesces into a single pending wake.
func (r *SubscriberRegistry) FanoutSignal() {
	r.mu.Lock()
	members := make([]sem.Semaphore, 0, len(r.members))
	for _, wake := range r.members {
		members = append(members, wake)
	}
	r.mu.Unlock()

	for _, wake := range members {
		wake.TryReleaseEdge()
	}
}

// Count returns the number of currently registered subscribers.
func (r *SubscriberRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Shutdown unlinks every member's wake semaphore, surfacing
// ErrRegistrationLost to every subscriber still blocked in Acquire.
func (r *SubscriberRegistry) Shutdown() {
	r.mu.Lock()
	members := make([]sem.Semaphore, 0, len(r.members))
	for id := range r.members {
		members = append(members, r.members[id])
	}
	r.members = make(map[string]sem.Semaphore)
	r.mu.Unlock()

	for _, wake := range members {
		_ = wake.Unlink()
	}
}

// OpenWakeSemaphore is used by the subscriber side to attach to a wake
// semaphore the publisher has (or will have) created, per spec.md §4.5
// point 4: poll until it exists, then open it.
func OpenWakeSemaphore(ctx context.Context, topic, subscriberID string) (sem.Semaphore, error) {
	return sem.Probe().Open(ctx, wakeSemName(topic, subscriberID))
}
