package orinctl

import (
	"sync"

	"github.com/NathanHowell/orinctl/internal/constants"
)

// TelemetryRecorder writes timestamped records into a bounded ring buffer
// and issues monotonically increasing, wrapping event ids.
//
// The recorder is safe for use from the cooperative tasks that borrow it
// (orchestrator, bridge monitor, REPL status); calls are serialized by an
// internal mutex.
type TelemetryRecorder struct {
	mu sync.Mutex

	ring  []TelemetryRecord
	head  int // index of the next slot to write
	count int

	nextID            EventID
	lastTransitionAt  Instant
	hasLastTransition bool
}

// NewTelemetryRecorder creates a recorder with the given ring capacity.
// Capacities below the default are raised to it.
func NewTelemetryRecorder(capacity int) *TelemetryRecorder {
	if capacity < constants.TelemetryRingCapacity {
		capacity = constants.TelemetryRingCapacity
	}
	return &TelemetryRecorder{ring: make([]TelemetryRecord, capacity)}
}

// Record appends an arbitrary telemetry event and returns its id. On
// overflow the oldest record is silently overwritten.
func (r *TelemetryRecorder) Record(event EventKind, payload TelemetryPayload, timestamp Instant) EventID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record(event, payload, timestamp)
}

func (r *TelemetryRecorder) record(event EventKind, payload TelemetryPayload, timestamp Instant) EventID {
	id := r.nextID
	r.nextID++ // wraps at 2^32 by uint32 arithmetic

	r.ring[r.head] = TelemetryRecord{ID: id, Timestamp: timestamp, Event: event, Details: payload}
	r.head = (r.head + 1) % len(r.ring)
	if r.count < len(r.ring) {
		r.count++
	}
	return id
}

// RecordStrapTransition records a strap event and captures the elapsed
// time since the previous strap transition.
func (r *TelemetryRecorder) RecordStrapTransition(line StrapID, action StrapAction, timestamp Instant) EventID {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload := StrapTelemetry{Line: line, Action: action}
	if r.hasLastTransition {
		payload.ElapsedSincePrevious = timestamp.DurationSince(r.lastTransitionAt)
		payload.HasElapsed = true
	}
	r.lastTransitionAt = timestamp
	r.hasLastTransition = true

	event := StrapAssertedEvent(line)
	if action == ActionReleaseHigh {
		event = StrapReleasedEvent(line)
	}
	return r.record(event, payload, timestamp)
}

// RecordCommandPending records a queued command that cannot start yet.
func (r *TelemetryRecorder) RecordCommandPending(kind SequenceKind, queueDepth int, requestedAt, timestamp Instant) EventID {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload := CommandTelemetry{
		QueueDepth: saturateU8(queueDepth),
		PendingFor: timestamp.DurationSince(requestedAt),
	}
	return r.record(CommandPendingEvent(kind), payload, timestamp)
}

// RecordCommandStarted records the moment a queued command begins executing.
func (r *TelemetryRecorder) RecordCommandStarted(kind SequenceKind, queueDepth int, requestedAt, timestamp Instant) EventID {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload := CommandTelemetry{
		QueueDepth: saturateU8(queueDepth),
		PendingFor: timestamp.DurationSince(requestedAt),
	}
	return r.record(CommandStartedEvent(kind), payload, timestamp)
}

// RecordSequenceCompletion records the end of a run, successful or not.
// started reports the run start when known; fault carries the optional
// fault recovery detail.
func (r *TelemetryRecorder) RecordSequenceCompletion(
	kind SequenceKind,
	outcome SequenceOutcome,
	startedAt Instant,
	started bool,
	timestamp Instant,
	eventsRecorded int,
	fault *FaultRecoveryTelemetry,
) EventID {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload := SequenceTelemetry{
		Outcome:        outcome,
		EventsRecorded: saturateU8(eventsRecorded),
		Fault:          fault,
	}
	if started {
		payload.Duration = timestamp.DurationSince(startedAt)
		payload.HasDuration = true
	}
	return r.record(SequenceCompleteEvent(kind), payload, timestamp)
}

// Len returns the number of records currently stored.
func (r *TelemetryRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Latest returns the most recent record, if any.
func (r *TelemetryRecorder) Latest() (TelemetryRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == 0 {
		return TelemetryRecord{}, false
	}
	idx := (r.head - 1 + len(r.ring)) % len(r.ring)
	return r.ring[idx], true
}

// OldestFirst returns a copy of the stored records in chronological order.
func (r *TelemetryRecorder) OldestFirst() []TelemetryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TelemetryRecord, 0, r.count)
	start := (r.head - r.count + len(r.ring)) % len(r.ring)
	for i := 0; i < r.count; i++ {
		out = append(out, r.ring[(start+i)%len(r.ring)])
	}
	return out
}

// SeenSince reports whether a record of the given kind was issued after
// the supplied id, honouring 32-bit id wraparound.
func (r *TelemetryRecorder) SeenSince(after EventID, kind EventKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := (r.head - r.count + len(r.ring)) % len(r.ring)
	for i := 0; i < r.count; i++ {
		rec := r.ring[(start+i)%len(r.ring)]
		if rec.Event == kind && int32(rec.ID-after) > 0 {
			return true
		}
	}
	return false
}

// LastID returns the most recently issued event id. The second result is
// false when nothing has been recorded yet.
func (r *TelemetryRecorder) LastID() (EventID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nextID == 0 && r.count == 0 {
		return 0, false
	}
	return r.nextID - 1, true
}
