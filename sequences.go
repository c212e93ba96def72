package orinctl

import (
	"fmt"
	"time"
)

// SequenceKind identifies a catalog sequence template.
type SequenceKind int

// Sequence kinds in telemetry index order.
const (
	NormalReboot SequenceKind = iota
	RecoveryEntry
	RecoveryImmediate
	FaultRecovery

	sequenceKindCount = 4
)

// SequenceKindNone is the sentinel used where a structured error carries
// no sequence context.
const SequenceKindNone SequenceKind = -1

// Index returns the deterministic index used for telemetry encoding.
func (k SequenceKind) Index() int {
	return int(k)
}

// SequenceKindFromIndex constructs a SequenceKind from a raw index.
func SequenceKindFromIndex(index int) (SequenceKind, bool) {
	if index < 0 || index >= sequenceKindCount {
		return 0, false
	}
	return SequenceKind(index), true
}

func (k SequenceKind) String() string {
	switch k {
	case NormalReboot:
		return "normal-reboot"
	case RecoveryEntry:
		return "recovery-entry"
	case RecoveryImmediate:
		return "recovery-immediate"
	case FaultRecovery:
		return "fault-recovery"
	default:
		return fmt.Sprintf("sequence(%d)", int(k))
	}
}

// TimingConstraints are the optional guardrails attached to a step. A zero
// duration means the corresponding limit is not enforced.
type TimingConstraints struct {
	MinHold          time.Duration
	MaxHold          time.Duration
	PreAssertDelay   time.Duration
	PostReleaseDelay time.Duration
}

// HoldRange builds constraints that bound the hold duration.
func HoldRange(min, max time.Duration) TimingConstraints {
	return TimingConstraints{MinHold: min, MaxHold: max}
}

// MinHoldOnly builds constraints with a lower bound only.
func MinHoldOnly(min time.Duration) TimingConstraints {
	return TimingConstraints{MinHold: min}
}

// AllowsHold reports whether a hold duration sits within the configured
// range.
func (c TimingConstraints) AllowsHold(hold time.Duration) bool {
	if c.MinHold > 0 && hold < c.MinHold {
		return false
	}
	if c.MaxHold > 0 && hold > c.MaxHold {
		return false
	}
	return true
}

// CompletionMode selects how a step reports completion back to the
// orchestrator.
type CompletionMode int

const (
	// CompleteAfterDuration finishes the step once the hold duration has
	// elapsed.
	CompleteAfterDuration CompletionMode = iota
	// CompleteOnBridgeActivity finishes the step when the bridge monitor
	// observes Jetson console traffic.
	CompleteOnBridgeActivity
	// CompleteOnEvent finishes the step when the telemetry recorder
	// observes a record of the configured kind.
	CompleteOnEvent
)

// StepCompletion pairs a completion mode with the event kind consulted by
// CompleteOnEvent.
type StepCompletion struct {
	Mode  CompletionMode
	Event EventKind
}

// AfterDuration is the completion predicate for plain timed steps.
func AfterDuration() StepCompletion {
	return StepCompletion{Mode: CompleteAfterDuration}
}

// OnBridgeActivity completes when Jetson→USB traffic is observed.
func OnBridgeActivity() StepCompletion {
	return StepCompletion{Mode: CompleteOnBridgeActivity}
}

// OnEvent completes when a telemetry record of the given kind appears.
func OnEvent(kind EventKind) StepCompletion {
	return StepCompletion{Mode: CompleteOnEvent, Event: kind}
}

// StrapStep is one ordered operation the orchestrator applies to a line.
type StrapStep struct {
	Line        StrapID
	Action      StrapAction
	HoldFor     time.Duration
	Constraints TimingConstraints
	Completion  StepCompletion
}

// Strap returns the routing metadata for the step's line.
func (s StrapStep) Strap() StrapLine {
	return StrapByID(s.Line)
}

// SequenceTemplate is an immutable catalog recipe for one sequence kind.
// MaxRetries of zero means the template declares no retry budget and the
// orchestrator falls back to its default.
type SequenceTemplate struct {
	Kind       SequenceKind
	Steps      []StrapStep
	Cooldown   time.Duration
	MaxRetries uint8
}

// StepCount returns the number of steps in the template.
func (t SequenceTemplate) StepCount() int {
	return len(t.Steps)
}

// RunDuration sums the nominal hold durations of every step.
func (t SequenceTemplate) RunDuration() time.Duration {
	var total time.Duration
	for _, step := range t.Steps {
		total += step.HoldFor
	}
	return total
}
