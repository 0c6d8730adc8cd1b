// If you are AI: This file implements the JSON status surface, grounded on
// the teacher's internal/svc/api/server.go and handlers.go (a Service
// struct with a start time, a writeJSON/writeError helper pair, and a
// RegisterRoutes method). /api/streams becomes /api/topics; stream
// app/name/publisher booleans become topic name/shape/dtype/subscriber
// count, since a framebus topic always has exactly one publisher for its
// lifetime.
package monitor

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"framebus/internal/frame"
)

// TopicStatus is the read-only view the monitor needs of a running topic.
// internal/svc/publisher.Publisher satisfies it.
type TopicStatus interface {
	Name() string
	Descriptor() frame.Descriptor
	SubscriberCount() int
}

// ServerStatus is the /api/server response.
type ServerStatus struct {
	Uptime    int64  `json:"uptime_seconds"`
	GoVersion string `json:"go_version"`
}

// TopicInfo is one entry of the /api/topics response.
type TopicInfo struct {
	Name            string `json:"name"`
	Shape           []int  `json:"shape"`
	DType           string `json:"dtype"`
	SubscriberCount int    `json:"subscriber_count"`
}

// Service exposes read-only process and topic status over HTTP and, on
// /ws/topics, a periodic live feed of the same topic list.
type Service struct {
	topics    []TopicStatus
	startTime time.Time
}

// New creates a monitor service reporting on topics.
func New(topics []TopicStatus) *Service {
	return &Service{topics: topics, startTime: time.Now()}
}

// RegisterRoutes registers the monitor's HTTP and WebSocket routes.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/server", s.handleServer)
	mux.HandleFunc("/api/topics", s.handleTopics)
	mux.HandleFunc("/ws/topics", s.handleTopicsWS)
}

func (s *Service) handleServer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, ServerStatus{
		Uptime:    int64(time.Since(s.startTime).Seconds()),
		GoVersion: runtime.Version(),
	})
}

func (s *Service) handleTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Service) snapshot() []TopicInfo {
	infos := make([]TopicInfo, 0, len(s.topics))
	for _, t := range s.topics {
		desc := t.Descriptor()
		infos = append(infos, TopicInfo{
			Name:            t.Name(),
			Shape:           desc.Shape,
			DType:           desc.DType.String(),
			SubscriberCount: t.SubscriberCount(),
		})
	}
	return infos
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
