// Package constants centralizes capacity and timing defaults shared by the
// orinctl core and the emulator front-end.
package constants

import "time"

// Queue and buffer capacities
const (
	// CommandQueueDepth is the depth of the bounded queue between the
	// scheduler and the orchestrator.
	CommandQueueDepth = 4

	// PendingQueueDepth bounds the commands the orchestrator holds while
	// another run is in flight. Arrivals beyond this are rejected as busy.
	PendingQueueDepth = 4

	// BridgeQueueDepth is the depth of the bridge activity event queue.
	BridgeQueueDepth = 4

	// BridgeFrameSize is the maximum payload of a single bridge frame in bytes.
	BridgeFrameSize = 64

	// TelemetryRingCapacity is the number of telemetry records retained in
	// memory. On overflow the oldest record is overwritten.
	TelemetryRingCapacity = 128

	// MaxEmittedEvents bounds the telemetry event ids tracked per sequence run.
	MaxEmittedEvents = 16

	// MaxLineLen is the maximum number of bytes accepted on a single REPL
	// line, excluding the terminator.
	MaxLineLen = 96

	// MaxTokens bounds the token stream produced for one REPL line.
	MaxTokens = 32
)

// Orchestrator timing defaults
const (
	// DefaultBridgeActivityTimeout bounds how long a sequence step may wait
	// for Jetson console traffic before failing with a bridge timeout. The
	// strap timing spec leaves this open; 30s covers a cold Jetson boot
	// into the recovery USB stack.
	DefaultBridgeActivityTimeout = 30 * time.Second

	// DefaultBrownOutRetries is the retry budget applied when a template
	// declares no budget of its own.
	DefaultBrownOutRetries = 1

	// DefaultPowerSamplePeriod is the interval between power monitor polls
	// while a sequence is active.
	DefaultPowerSamplePeriod = 5 * time.Millisecond

	// DefaultPowerStableHoldoff is how long the rail must read stable
	// before a brown-out retry re-arms the sequence.
	DefaultPowerStableHoldoff = 25 * time.Millisecond
)
