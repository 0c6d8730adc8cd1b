// If you are AI: This file implements `framebusd watch`, a thin CLI driver
// over internal/svc/subscriber for manual inspection of a running topic.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"framebus/internal/svc/subscriber"
)

func watchTopic(ctx context.Context, topicName string, ringLength int, concatenate bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub, err := subscriber.New(ctx, topicName, subscriber.Config{
		RingLength:  ringLength,
		Concatenate: concatenate,
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", topicName, err)
	}
	defer sub.Close()

	sub.StartWorker(ctx)

	for {
		f, err := sub.Latest(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read %s: %w", topicName, err)
		}
		fmt.Printf("%s: timestamp=%d bytes=%d\n", topicName, f.Timestamp, len(f.Bytes))
	}
}
