// If you are AI: This file defines the configuration structure for
// framebusd. It uses strict YAML decoding and explicit defaults, same as
// the teacher's original config package.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the complete daemon configuration: the monitor/health HTTP
// server and every topic the daemon publishes.
type Config struct {
	Server ServerConfig  `yaml:"server"`
	Topics []TopicConfig `yaml:"topics"`
}

// ServerConfig defines the monitor process's own HTTP settings.
type ServerConfig struct {
	HealthPort  int `yaml:"health_port"`  // Defaulted and validated only; the server binds no listener on it
	MonitorPort int `yaml:"monitor_port"` // Port for /healthz, JSON status + WebSocket stats
}

// IngestConfig selects and parameterizes a topic's producer adapter. These
// adapters are external collaborators by spec.md §1 — the core only
// consumes the (payload, timestamp) pairs they produce.
type IngestConfig struct {
	Kind   string  `yaml:"kind"`              // "random_camera", "random_microphone", "image_file"
	Path   string  `yaml:"path,omitempty"`    // source file, for image_file
	RateHz float64 `yaml:"rate_hz,omitempty"` // publish cadence
}

// TopicConfig declares one topic's shape, element type, and subscriber-side
// buffering defaults, plus which ingest adapter feeds it when framebusd runs
// its own publisher (the `serve` subcommand).
type TopicConfig struct {
	Name        string       `yaml:"name"`
	Shape       []int        `yaml:"shape"`
	DType       string       `yaml:"dtype"`
	RingLength  int          `yaml:"ring_length,omitempty"`
	Concatenate bool         `yaml:"concatenate,omitempty"`
	Ingest      IngestConfig `yaml:"ingest"`
}

// Load reads configuration from a YAML file, rejecting unknown fields, and
// applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// setDefaults applies explicit default values to unset fields.
func (c *Config) setDefaults() {
	if c.Server.HealthPort == 0 {
		c.Server.HealthPort = 8080
	}
	if c.Server.MonitorPort == 0 {
		c.Server.MonitorPort = 8081
	}
	for i := range c.Topics {
		c.Topics[i].setDefaults()
	}
}

func (t *TopicConfig) setDefaults() {
	if t.RingLength == 0 {
		t.RingLength = 8
	}
	if t.Ingest.RateHz == 0 {
		t.Ingest.RateHz = 30
	}
}
