package orinctl

import (
	"sync/atomic"
	"time"
)

// Metrics tracks operational statistics for a controller instance.
type Metrics struct {
	// Command admission counters
	CommandsAccepted atomic.Uint64
	CommandsRejected atomic.Uint64

	// Sequence outcome counters
	SequencesCompleted atomic.Uint64
	SequencesSkipped   atomic.Uint64
	SequencesFailed    atomic.Uint64

	// Strap and retry counters
	StrapTransitions atomic.Uint64
	BrownOutRetries  atomic.Uint64

	// Run duration tracking
	TotalRunNs atomic.Uint64
	RunCount   atomic.Uint64

	// Pending queue statistics
	QueueDepthTotal atomic.Uint64
	QueueDepthCount atomic.Uint64
	MaxQueueDepth   atomic.Uint32
}

// NewMetrics creates a zeroed metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordOutcome folds one finished run into the counters.
func (m *Metrics) RecordOutcome(outcome SequenceOutcome, duration time.Duration) {
	switch outcome {
	case OutcomeCompleted:
		m.SequencesCompleted.Add(1)
		m.TotalRunNs.Add(uint64(duration.Nanoseconds()))
		m.RunCount.Add(1)
	case OutcomeSkippedCooldown:
		m.SequencesSkipped.Add(1)
	case OutcomeFailed:
		m.SequencesFailed.Add(1)
	}
}

// RecordQueueDepth records the pending queue depth for statistics.
func (m *Metrics) RecordQueueDepth(depth uint32) {
	m.QueueDepthTotal.Add(uint64(depth))
	m.QueueDepthCount.Add(1)

	for {
		current := m.MaxQueueDepth.Load()
		if depth <= current {
			break
		}
		if m.MaxQueueDepth.CompareAndSwap(current, depth) {
			break
		}
	}
}

// MetricsSnapshot is a point-in-time copy of the counters with derived
// statistics.
type MetricsSnapshot struct {
	CommandsAccepted uint64
	CommandsRejected uint64

	SequencesCompleted uint64
	SequencesSkipped   uint64
	SequencesFailed    uint64

	StrapTransitions uint64
	BrownOutRetries  uint64

	AvgRunDuration time.Duration
	AvgQueueDepth  float64
	MaxQueueDepth  uint32

	TotalSequences uint64
	FailureRate    float64 // percentage of runs that failed
}

// Snapshot copies the counters and computes derived statistics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		CommandsAccepted:   m.CommandsAccepted.Load(),
		CommandsRejected:   m.CommandsRejected.Load(),
		SequencesCompleted: m.SequencesCompleted.Load(),
		SequencesSkipped:   m.SequencesSkipped.Load(),
		SequencesFailed:    m.SequencesFailed.Load(),
		StrapTransitions:   m.StrapTransitions.Load(),
		BrownOutRetries:    m.BrownOutRetries.Load(),
		MaxQueueDepth:      m.MaxQueueDepth.Load(),
	}

	snap.TotalSequences = snap.SequencesCompleted + snap.SequencesSkipped + snap.SequencesFailed

	if count := m.RunCount.Load(); count > 0 {
		snap.AvgRunDuration = time.Duration(m.TotalRunNs.Load() / count)
	}
	if count := m.QueueDepthCount.Load(); count > 0 {
		snap.AvgQueueDepth = float64(m.QueueDepthTotal.Load()) / float64(count)
	}
	if snap.TotalSequences > 0 {
		snap.FailureRate = float64(snap.SequencesFailed) / float64(snap.TotalSequences) * 100.0
	}

	return snap
}

// Reset zeroes every counter.
func (m *Metrics) Reset() {
	m.CommandsAccepted.Store(0)
	m.CommandsRejected.Store(0)
	m.SequencesCompleted.Store(0)
	m.SequencesSkipped.Store(0)
	m.SequencesFailed.Store(0)
	m.StrapTransitions.Store(0)
	m.BrownOutRetries.Store(0)
	m.TotalRunNs.Store(0)
	m.RunCount.Store(0)
	m.QueueDepthTotal.Store(0)
	m.QueueDepthCount.Store(0)
	m.MaxQueueDepth.Store(0)
}

// Observer allows pluggable metrics collection from the orchestrator.
// Implementations must be safe to call from the orchestrator goroutine.
type Observer interface {
	// ObserveCommandAccepted is called when a command joins the pending queue.
	ObserveCommandAccepted(kind SequenceKind)

	// ObserveCommandRejected is called when a command is refused.
	ObserveCommandRejected(reason CommandRejectionReason)

	// ObserveStrapTransition is called for each strap driver call.
	ObserveStrapTransition(line StrapID, action StrapAction)

	// ObserveSequenceOutcome is called once per finished run.
	ObserveSequenceOutcome(kind SequenceKind, outcome SequenceOutcome, duration time.Duration)

	// ObserveBrownOutRetry is called each time a brown-out triggers a retry.
	ObserveBrownOutRetry()

	// ObserveQueueDepth is called with the pending queue depth after each
	// accepted command.
	ObserveQueueDepth(depth int)
}

// NoopObserver is a no-op implementation of Observer.
type NoopObserver struct{}

func (NoopObserver) ObserveCommandAccepted(SequenceKind)                            {}
func (NoopObserver) ObserveCommandRejected(CommandRejectionReason)                  {}
func (NoopObserver) ObserveStrapTransition(StrapID, StrapAction)                    {}
func (NoopObserver) ObserveSequenceOutcome(SequenceKind, SequenceOutcome, time.Duration) {}
func (NoopObserver) ObserveBrownOutRetry()                                          {}
func (NoopObserver) ObserveQueueDepth(int)                                          {}

// MetricsObserver records observations into a Metrics instance.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer backed by the given metrics.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveCommandAccepted(SequenceKind) {
	o.metrics.CommandsAccepted.Add(1)
}

func (o *MetricsObserver) ObserveCommandRejected(CommandRejectionReason) {
	o.metrics.CommandsRejected.Add(1)
}

func (o *MetricsObserver) ObserveStrapTransition(StrapID, StrapAction) {
	o.metrics.StrapTransitions.Add(1)
}

func (o *MetricsObserver) ObserveSequenceOutcome(_ SequenceKind, outcome SequenceOutcome, duration time.Duration) {
	o.metrics.RecordOutcome(outcome, duration)
}

func (o *MetricsObserver) ObserveBrownOutRetry() {
	o.metrics.BrownOutRetries.Add(1)
}

func (o *MetricsObserver) ObserveQueueDepth(depth int) {
	if depth < 0 {
		depth = 0
	}
	o.metrics.RecordQueueDepth(uint32(depth))
}

// Compile-time interface checks
var (
	_ Observer = (*MetricsObserver)(nil)
	_ Observer = NoopObserver{}
)
