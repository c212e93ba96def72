// Package emulator hosts the host-side rendition of the controller: a
// synchronous REPL session used for transcript capture, an interactive
// console with completion, and the configuration surface shared by both.
package emulator

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	orinctl "github.com/NathanHowell/orinctl"
)

// Duration wraps time.Duration so config files can use values like
// "250ms" or "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config tunes the emulator.
type Config struct {
	// QueueDepth is the command queue capacity.
	QueueDepth int `yaml:"queue_depth"`
	// PendingDepth bounds commands held behind an active run.
	PendingDepth int `yaml:"pending_depth"`
	// BridgeTimeout bounds recovery bridge waits.
	BridgeTimeout Duration `yaml:"bridge_timeout"`
	// LogLevel selects the logging verbosity: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// TranscriptPath is where session transcripts are written. Empty
	// disables transcript capture.
	TranscriptPath string `yaml:"transcript_path"`
}

// DefaultConfig returns the standard emulator settings.
func DefaultConfig() Config {
	return Config{
		QueueDepth:    orinctl.CommandQueueDepth,
		PendingDepth:  orinctl.PendingQueueDepth,
		BridgeTimeout: Duration(orinctl.DefaultBridgeActivityTimeout),
		LogLevel:      "info",
	}
}

// LoadConfig reads a YAML config file, filling unset fields with
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = orinctl.CommandQueueDepth
	}
	if cfg.PendingDepth <= 0 {
		cfg.PendingDepth = orinctl.PendingQueueDepth
	}
	if cfg.BridgeTimeout <= 0 {
		cfg.BridgeTimeout = Duration(orinctl.DefaultBridgeActivityTimeout)
	}
	return cfg, nil
}
