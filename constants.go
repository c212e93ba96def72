package orinctl

import "github.com/NathanHowell/orinctl/internal/constants"

// Re-export capacity and timing defaults for embedders.
const (
	CommandQueueDepth            = constants.CommandQueueDepth
	PendingQueueDepth            = constants.PendingQueueDepth
	BridgeQueueDepth             = constants.BridgeQueueDepth
	BridgeFrameSize              = constants.BridgeFrameSize
	TelemetryRingCapacity        = constants.TelemetryRingCapacity
	MaxEmittedEvents             = constants.MaxEmittedEvents
	MaxLineLen                   = constants.MaxLineLen
	DefaultBridgeActivityTimeout = constants.DefaultBridgeActivityTimeout
	DefaultBrownOutRetries       = constants.DefaultBrownOutRetries
	DefaultPowerSamplePeriod     = constants.DefaultPowerSamplePeriod
	DefaultPowerStableHoldoff    = constants.DefaultPowerStableHoldoff
)
