package orinctl

import (
	"time"

	"github.com/NathanHowell/orinctl/internal/constants"
)

// PowerSample is a single observation of the VDD_3V3 rail.
type PowerSample struct {
	Timestamp     Instant
	Millivolts    uint16
	HasMillivolts bool
}

// PowerState classifies the most recent rail observation.
type PowerState int

const (
	PowerUnknown PowerState = iota
	PowerStable
	PowerBrownOut
)

// PowerStatus pairs a classification with the sample that produced it.
type PowerStatus struct {
	State  PowerState
	Sample PowerSample
}

// PowerMonitor is the capability interface for the supply rail monitor.
type PowerMonitor interface {
	// Poll returns the most recent rail classification.
	Poll() PowerStatus

	// SampleInterval is the wait between consecutive polls.
	SampleInterval() time.Duration

	// StableHoldoff is how long the rail must remain stable before a
	// brown-out retry may proceed.
	StableHoldoff() time.Duration
}

// NoopPowerMonitor always reports an unknown rail state. It stands in on
// host builds where no ADC is wired up.
type NoopPowerMonitor struct{}

func (NoopPowerMonitor) Poll() PowerStatus {
	return PowerStatus{State: PowerUnknown}
}

func (NoopPowerMonitor) SampleInterval() time.Duration {
	return constants.DefaultPowerSamplePeriod
}

func (NoopPowerMonitor) StableHoldoff() time.Duration {
	return constants.DefaultPowerStableHoldoff
}

var _ PowerMonitor = NoopPowerMonitor{}
