package control

import (
	"context"
	"testing"
	"time"
)

func TestMailboxSigninSignout(t *testing.T) {
	backend := mailboxBackend{}
	name := "test-topic-mailbox"

	server, err := backend.Listen(name)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client, err := backend.Dial(ctx, name)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	want := []Message{
		{Command: CommandSignin, SubscriberID: "sub-1"},
		{Command: CommandSignout, SubscriberID: "sub-1"},
	}
	for _, msg := range want {
		if err := client.Send(ctx, msg); err != nil {
			t.Fatalf("Send: %v", err)
		}
		got, err := server.Receive(ctx)
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		if got != msg {
			t.Fatalf("got %+v, want %+v", got, msg)
		}
	}
}

func TestMailboxOrderingPerSender(t *testing.T) {
	backend := mailboxBackend{}
	name := "test-topic-mailbox-order"

	server, err := backend.Listen(name)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client, err := backend.Dial(ctx, name)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	go func() {
		_ = client.Send(ctx, Message{Command: CommandSignin, SubscriberID: "s"})
		_ = client.Send(ctx, Message{Command: CommandSignout, SubscriberID: "s"})
	}()

	first, err := server.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if first.Command != CommandSignin {
		t.Fatalf("expected signin first, got %q", first.Command)
	}
	second, err := server.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if second.Command != CommandSignout {
		t.Fatalf("expected signout second, got %q", second.Command)
	}
}
