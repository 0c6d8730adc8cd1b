// If you are AI: This file implements the daemon process lifecycle:
// construct one publisher per configured topic, feed each from its ingest
// adapter, and serve the monitor's HTTP/WebSocket status surface. Grounded
// on the teacher's internal/server/server.go (a Server struct wrapping an
// *http.Server plus the services registered on its mux, with New/Start/
// Shutdown methods).
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"framebus/internal/config"
	"framebus/internal/dtype"
	"framebus/internal/frame"
	"framebus/internal/ingest"
	"framebus/internal/svc/health"
	"framebus/internal/svc/monitor"
	"framebus/internal/svc/publisher"
)

// Server wraps the monitor HTTP server and the publishers it reports on.
type Server struct {
	httpServer *http.Server
	publishers []*publisher.Publisher
	producers  []ingest.Producer
}

// New constructs one publisher per configured topic and the monitor server
// that reports on all of them. Publishers are created (and their shared
// memory/semaphores allocated) here; ingest loops are started by Start.
func New(cfg *config.Config) (*Server, error) {
	mux := http.NewServeMux()

	healthSvc := health.New()
	healthSvc.RegisterRoutes(mux)

	publishers := make([]*publisher.Publisher, 0, len(cfg.Topics))
	producers := make([]ingest.Producer, 0, len(cfg.Topics))
	statuses := make([]monitor.TopicStatus, 0, len(cfg.Topics))

	for _, tc := range cfg.Topics {
		dt, err := dtype.Parse(tc.DType)
		if err != nil {
			return nil, fmt.Errorf("topic %q: %w", tc.Name, err)
		}
		desc := frame.Descriptor{Name: tc.Name, Shape: tc.Shape, DType: dt}

		pub, err := publisher.New(desc)
		if err != nil {
			return nil, fmt.Errorf("topic %q: create publisher: %w", tc.Name, err)
		}

		producer, err := ingest.New(desc, ingest.Spec{
			Kind:   tc.Ingest.Kind,
			Path:   tc.Ingest.Path,
			RateHz: tc.Ingest.RateHz,
		})
		if err != nil {
			_ = pub.Shutdown()
			return nil, fmt.Errorf("topic %q: create ingest adapter: %w", tc.Name, err)
		}

		publishers = append(publishers, pub)
		producers = append(producers, producer)
		statuses = append(statuses, pub)
	}

	monitorSvc := monitor.New(statuses)
	monitorSvc.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MonitorPort),
		Handler: mux,
	}

	return &Server{
		httpServer: httpServer,
		publishers: publishers,
		producers:  producers,
	}, nil
}

// Start launches one ingest loop per topic and blocks serving the monitor's
// HTTP endpoints until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	for i := range s.publishers {
		go s.runIngestLoop(ctx, s.publishers[i], s.producers[i])
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("monitor server: %w", err)
	}
	return nil
}

func (s *Server) runIngestLoop(ctx context.Context, pub *publisher.Publisher, producer ingest.Producer) {
	for {
		payload, timestamp, err := producer.NextFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("topic %s: ingest error: %v", pub.Name(), err)
			return
		}
		if err := pub.Publish(ctx, payload, timestamp); err != nil {
			log.Printf("topic %s: publish error: %v", pub.Name(), err)
		}
	}
}

// Shutdown stops the monitor HTTP server and every publisher (spec.md
// §4.4's shutdown sequence: listener, wake semaphores, region semaphores,
// shared memory).
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	for _, pub := range s.publishers {
		if shutErr := pub.Shutdown(); shutErr != nil && err == nil {
			err = shutErr
		}
	}
	return err
}

// ShutdownWithTimeout stops the server with a fixed 5-second timeout, a
// convenience wrapper mirroring the teacher's.
func (s *Server) ShutdownWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
