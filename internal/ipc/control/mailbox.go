// If you are AI: This file implements Channel as a depth-1 mailbox: one
// shared region holds a length-prefixed JSON message, guarded by an "empty"
// and a "full" semaphore (classic single-slot producer/consumer, e.g. Silberschatz
// ch.6). It is built entirely on internal/ipc/shm and internal/ipc/sem, so it
// inherits their posix-vs-local platform selection: on Linux it is a real
// cross-process channel over /dev/shm, elsewhere it degrades to an
// in-process mailbox (fine for tests, not for separate OS processes — that
// case is loopback.go's job).
package control

import (
	"context"
	"fmt"

	"framebus/internal/ipc"
	"framebus/internal/ipc/sem"
	"framebus/internal/ipc/shm"
)

// mailboxPayloadSize bounds the JSON-encoded message. 128 bytes comfortably
// fits {"command":"signout","r_id":"<uuid>"} with room to spare.
const mailboxPayloadSize = 128

// 4-byte little-endian length prefix followed by the payload bytes.
const mailboxRegionSize = 4 + mailboxPayloadSize

type mailboxBackend struct{}

func newMailboxBackend() Backend { return mailboxBackend{} }

// Available reports whether the mailbox backend can act as a genuine
// cross-process channel. It is always usable in-process (package shm always
// has a local fallback), but Probe only prefers it over loopback when that
// in-process degradation would not matter.
func (mailboxBackend) Available() bool { return ipc.Available() }

func (mailboxBackend) Listen(name string) (Channel, error) {
	region, err := shm.Probe().Create(regionName(name), mailboxRegionSize)
	if err != nil {
		return nil, fmt.Errorf("control: create mailbox region: %w", err)
	}
	empty, err := sem.Probe().Create(semName(name, "empty"), 1)
	if err != nil {
		return nil, fmt.Errorf("control: create mailbox empty sem: %w", err)
	}
	full, err := sem.Probe().Create(semName(name, "full"), 0)
	if err != nil {
		return nil, fmt.Errorf("control: create mailbox full sem: %w", err)
	}
	return &mailboxChannel{region: region, empty: empty, full: full, owner: true}, nil
}

func (mailboxBackend) Dial(ctx context.Context, name string) (Channel, error) {
	region, err := shm.Probe().Open(ctx, regionName(name), mailboxRegionSize)
	if err != nil {
		return nil, fmt.Errorf("control: open mailbox region: %w", err)
	}
	empty, err := sem.Probe().Open(ctx, semName(name, "empty"))
	if err != nil {
		return nil, fmt.Errorf("control: open mailbox empty sem: %w", err)
	}
	full, err := sem.Probe().Open(ctx, semName(name, "full"))
	if err != nil {
		return nil, fmt.Errorf("control: open mailbox full sem: %w", err)
	}
	return &mailboxChannel{region: region, empty: empty, full: full, owner: false}, nil
}

func regionName(name string) string { return "ctl-" + name }
func semName(name, role string) string { return "ctl-sem-" + name + "-" + role }

// mailboxChannel is shared by both ends; owner distinguishes the publisher
// (which unlinks on Close) from subscribers (which only detach).
type mailboxChannel struct {
	region shm.Region
	empty  sem.Semaphore
	full   sem.Semaphore
	owner  bool
}

func (c *mailboxChannel) Send(ctx context.Context, msg Message) error {
	encoded, err := msg.encode()
	if err != nil {
		return fmt.Errorf("control: encode message: %w", err)
	}
	if len(encoded) > mailboxPayloadSize {
		return ErrMessageTooLarge
	}
	if err := c.empty.Acquire(ctx); err != nil {
		return translateSemErr(err)
	}
	buf := c.region.Bytes()
	buf[0] = byte(len(encoded))
	buf[1] = byte(len(encoded) >> 8)
	buf[2] = byte(len(encoded) >> 16)
	buf[3] = byte(len(encoded) >> 24)
	copy(buf[4:], encoded)
	c.full.Release()
	return nil
}

func (c *mailboxChannel) Receive(ctx context.Context) (Message, error) {
	if err := c.full.Acquire(ctx); err != nil {
		return Message{}, translateSemErr(err)
	}
	buf := c.region.Bytes()
	n := int(buf[0]) | int(buf[1])<<8 | int(buf[2])<<16 | int(buf[3])<<24
	if n < 0 || n > mailboxPayloadSize {
		c.empty.Release()
		return Message{}, fmt.Errorf("control: corrupt mailbox length %d", n)
	}
	payload := make([]byte, n)
	copy(payload, buf[4:4+n])
	c.empty.Release()
	return decodeMessage(payload)
}

func (c *mailboxChannel) Close() error {
	if c.owner {
		_ = c.full.Unlink()
		_ = c.empty.Unlink()
		return c.region.Unlink()
	}
	_ = c.full.Close()
	_ = c.empty.Close()
	return c.region.Close()
}

func translateSemErr(err error) error {
	if err == sem.ErrClosed {
		return ErrChannelClosed
	}
	return err
}
