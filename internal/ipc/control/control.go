// If you are AI: This package implements the control channel (spec.md
// §4.3): a low-rate, single-slot transport carrying signin/signout commands
// from subscribers to the publisher's listener thread. Two backends satisfy
// Channel: mailbox.go (a depth-1 mailbox built from the shm and sem
// abstractions, standing in for a POSIX message queue) and loopback.go (a
// TCP loopback fallback for platforms where even /dev/shm is unavailable).
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"framebus/internal/frame"
)

// Command names carried by Message.Command.
const (
	CommandSignin  = "signin"
	CommandSignout = "signout"
)

// ErrMessageTooLarge is returned by Send when the encoded message exceeds
// the backend's fixed slot size.
var ErrMessageTooLarge = errors.New("control: encoded message exceeds slot size")

// ErrChannelClosed is returned by Send/Receive once the channel has been
// closed by either party. It is the same value as frame.ErrChannelClosed.
var ErrChannelClosed = frame.ErrChannelClosed

// Message is the JSON object exchanged over the control channel
// (spec.md §4.3): {"command": "signin", "r_id": "<subscriber id>"}.
type Message struct {
	Command      string `json:"command"`
	SubscriberID string `json:"r_id"`
}

func (m Message) encode() ([]byte, error) {
	return json.Marshal(m)
}

func decodeMessage(buf []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(buf, &m); err != nil {
		return Message{}, fmt.Errorf("control: decode message: %w", err)
	}
	return m, nil
}

// Channel is one end of a control channel.
type Channel interface {
	// Send enqueues msg. It blocks until the single slot is free.
	Send(ctx context.Context, msg Message) error
	// Receive blocks until a message is available.
	Receive(ctx context.Context) (Message, error)
	// Close releases local resources. The server side additionally unlinks
	// the named resource so no further subscriber can dial it.
	Close() error
}

// Backend creates (server / publisher side) or dials (client / subscriber
// side) a named control channel.
type Backend interface {
	Listen(name string) (Channel, error)
	Dial(ctx context.Context, name string) (Channel, error)
	Available() bool
}

// Probe selects the best available backend: the mailbox backend whenever
// /dev/shm is usable (it degrades to an in-process mailbox otherwise, which
// is sufficient for same-process publisher/subscriber pairs such as tests),
// the TCP loopback backend otherwise.
func Probe() Backend {
	mb := newMailboxBackend()
	if mb.Available() {
		return mb
	}
	return newLoopbackBackend()
}
