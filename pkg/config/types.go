package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the layered configuration root. Only server/logging/ingest
// concerns survive from the teacher's much larger Config — LiteMQ has no
// security, retention, or WAL-tuning surface to carry.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Ingest  IngestConfig  `yaml:"ingest"`
}

// ServerConfig controls where LiteMQ listens and stores data.
type ServerConfig struct {
	Port    int    `yaml:"port"`
	DataDir string `yaml:"data_dir"`
	Mode    string `yaml:"mode"` // "memory" | "persistent"
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// IngestConfig controls the optional background stats heartbeat.
type IngestConfig struct {
	StatsInterval string `yaml:"stats_interval"` // cron expression; empty disables
}

// Duration wraps time.Duration so it can be unmarshalled from strings like
// "100ms" or from a bare number interpreted as seconds, matching the
// teacher's YAML duration convention.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = Duration(0)
		return nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		*d = Duration(td)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration value: %q", node.Value)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }
