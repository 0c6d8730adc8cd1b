// If you are AI: This file implements the TCP loopback fallback the spec
// calls for on platforms without usable shared memory (spec.md §4.3). The
// accept loop and per-connection reader goroutine are grounded on the
// teacher's internal/svc/rtmp/server.go: a net.Listener accepts connections,
// each gets its own goroutine, and all of them feed one queue drained by a
// single receiver — here that queue replaces the RTMP server's per-session
// bus registry lookups.
package control

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"framebus/internal/ipc"
)

// loopbackBasePort is the lowest port a topic's well-known port can be
// derived to from its name; topics hash to a spread of ports above it so
// that several can run in one process without configuration.
const loopbackBasePort = 42000
const loopbackPortSpread = 2000

func portForName(name string) int {
	return loopbackBasePort + ipc.KeyForName(name)%loopbackPortSpread
}

type loopbackBackend struct{}

func newLoopbackBackend() Backend { return loopbackBackend{} }

// Available is always true: TCP loopback needs nothing platform-specific.
func (loopbackBackend) Available() bool { return true }

func (loopbackBackend) Listen(name string) (Channel, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", portForName(name))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("control: listen %s: %w", addr, err)
	}
	s := &loopbackServer{
		listener: ln,
		queue:    make(chan Message, 1),
		done:     make(chan struct{}),
	}
	go s.accept()
	return s, nil
}

func (loopbackBackend) Dial(ctx context.Context, name string) (Channel, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", portForName(name))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("control: dial %s: %w", addr, err)
	}
	return &loopbackClient{conn: conn, enc: json.NewEncoder(conn)}, nil
}

// loopbackServer is the publisher side: it accepts one connection per
// subscriber and merges every sender's messages into a single queue that
// Receive drains, matching the depth-1 mailbox's multi-producer/single-
// consumer contract.
type loopbackServer struct {
	listener net.Listener
	queue    chan Message
	mu       sync.Mutex
	closed   bool
	done     chan struct{}
}

func (s *loopbackServer) accept() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			close(s.done)
			return
		}
		go s.handleConn(conn)
	}
}

func (s *loopbackServer) handleConn(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		msg, err := decodeMessage(scanner.Bytes())
		if err != nil {
			continue
		}
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		s.queue <- msg
	}
}

func (s *loopbackServer) Send(ctx context.Context, msg Message) error {
	return errors.New("control: loopback server channel is receive-only")
}

func (s *loopbackServer) Receive(ctx context.Context) (Message, error) {
	select {
	case msg := <-s.queue:
		return msg, nil
	case <-s.done:
		return Message{}, ErrChannelClosed
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (s *loopbackServer) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.listener.Close()
}

// loopbackClient is the subscriber side: a single persistent connection,
// one JSON object per line (no other framing needed at this message rate).
type loopbackClient struct {
	conn net.Conn
	enc  *json.Encoder
	mu   sync.Mutex
}

func (c *loopbackClient) Send(ctx context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enc.Encode(msg); err != nil {
		return fmt.Errorf("control: send over loopback: %w", err)
	}
	return nil
}

func (c *loopbackClient) Receive(ctx context.Context) (Message, error) {
	return Message{}, errors.New("control: loopback client channel is send-only")
}

func (c *loopbackClient) Close() error {
	return c.conn.Close()
}
