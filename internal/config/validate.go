// If you are AI: This file validates configuration values and returns
// descriptive errors, matching the teacher's validate.go structure.
package config

import (
	"fmt"

	"framebus/internal/dtype"
)

// Validate checks that all configuration values are within acceptable
// ranges. Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if len(c.Topics) == 0 {
		return fmt.Errorf("at least one topic must be declared")
	}
	seen := make(map[string]bool, len(c.Topics))
	for i := range c.Topics {
		t := &c.Topics[i]
		if err := t.Validate(); err != nil {
			return fmt.Errorf("topic %q: %w", t.Name, err)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate topic name %q", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// Validate checks server configuration values.
func (s *ServerConfig) Validate() error {
	if s.HealthPort <= 0 || s.HealthPort > 65535 {
		return fmt.Errorf("health_port must be between 1 and 65535, got %d", s.HealthPort)
	}
	if s.MonitorPort <= 0 || s.MonitorPort > 65535 {
		return fmt.Errorf("monitor_port must be between 1 and 65535, got %d", s.MonitorPort)
	}
	if s.HealthPort == s.MonitorPort {
		return fmt.Errorf("health_port and monitor_port must be different, both are %d", s.HealthPort)
	}
	return nil
}

// Validate checks one topic declaration.
func (t *TopicConfig) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if len(t.Shape) == 0 {
		return fmt.Errorf("shape must have at least one dimension")
	}
	for _, dim := range t.Shape {
		if dim <= 0 {
			return fmt.Errorf("shape dimensions must be positive, got %d", dim)
		}
	}
	if _, err := dtype.Parse(t.DType); err != nil {
		return fmt.Errorf("dtype: %w", err)
	}
	if t.RingLength < 1 {
		return fmt.Errorf("ring_length must be at least 1, got %d", t.RingLength)
	}
	switch t.Ingest.Kind {
	case "random_camera", "random_microphone":
	case "image_file":
		if t.Ingest.Path == "" {
			return fmt.Errorf("ingest.path is required for kind %q", t.Ingest.Kind)
		}
	case "":
		return fmt.Errorf("ingest.kind must be set")
	default:
		return fmt.Errorf("unknown ingest.kind %q", t.Ingest.Kind)
	}
	if t.Ingest.RateHz <= 0 {
		return fmt.Errorf("ingest.rate_hz must be positive, got %g", t.Ingest.RateHz)
	}
	return nil
}
