package orinctl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordOutcome(t *testing.T) {
	m := NewMetrics()

	m.RecordOutcome(OutcomeCompleted, 2*time.Second)
	m.RecordOutcome(OutcomeCompleted, 4*time.Second)
	m.RecordOutcome(OutcomeSkippedCooldown, 0)
	m.RecordOutcome(OutcomeFailed, time.Second)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.SequencesCompleted)
	assert.Equal(t, uint64(1), snap.SequencesSkipped)
	assert.Equal(t, uint64(1), snap.SequencesFailed)
	assert.Equal(t, uint64(4), snap.TotalSequences)
	assert.Equal(t, 3*time.Second, snap.AvgRunDuration)
	assert.InDelta(t, 25.0, snap.FailureRate, 0.001)
}

func TestMetricsQueueDepthTracking(t *testing.T) {
	m := NewMetrics()

	m.RecordQueueDepth(1)
	m.RecordQueueDepth(3)
	m.RecordQueueDepth(2)

	snap := m.Snapshot()
	assert.Equal(t, uint32(3), snap.MaxQueueDepth)
	assert.InDelta(t, 2.0, snap.AvgQueueDepth, 0.001)
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.CommandsAccepted.Add(5)
	m.RecordOutcome(OutcomeFailed, time.Second)

	m.Reset()
	snap := m.Snapshot()
	assert.Zero(t, snap.CommandsAccepted)
	assert.Zero(t, snap.TotalSequences)
	assert.Zero(t, snap.FailureRate)
}

func TestMetricsObserverRoutesObservations(t *testing.T) {
	m := NewMetrics()
	var obs Observer = NewMetricsObserver(m)

	obs.ObserveCommandAccepted(NormalReboot)
	obs.ObserveCommandRejected(RejectionBusy)
	obs.ObserveStrapTransition(StrapPwr, ActionAssertLow)
	obs.ObserveSequenceOutcome(NormalReboot, OutcomeCompleted, time.Second)
	obs.ObserveBrownOutRetry()
	obs.ObserveQueueDepth(2)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.CommandsAccepted)
	assert.Equal(t, uint64(1), snap.CommandsRejected)
	assert.Equal(t, uint64(1), snap.StrapTransitions)
	assert.Equal(t, uint64(1), snap.SequencesCompleted)
	assert.Equal(t, uint64(1), snap.BrownOutRetries)
	assert.Equal(t, uint32(2), snap.MaxQueueDepth)
}
