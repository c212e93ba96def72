package orinctl

import (
	"time"

	"github.com/NathanHowell/orinctl/internal/constants"
)

// CommandSource identifies who requested a sequence.
type CommandSource int

const (
	// SourceUSBHost marks commands issued over the USB CDC console.
	SourceUSBHost CommandSource = iota
)

func (s CommandSource) String() string {
	return "usb-host"
}

// CommandFlags customize how a command executes. Zero values mean the flag
// is not set.
type CommandFlags struct {
	// ForceRecovery marks immediate-recovery requests that hold REC until
	// console activity.
	ForceRecovery bool
	// StartAfter delays arming until RequestedAt+StartAfter has passed.
	StartAfter time.Duration
	// RetryOverride bounds the brown-out retry budget for this run only;
	// HasRetryOverride distinguishes an explicit zero from "unset".
	RetryOverride    uint8
	HasRetryOverride bool
}

// SequenceCommand is a strap sequence request waiting to be processed by
// the orchestrator. It is immutable once enqueued.
type SequenceCommand struct {
	Kind        SequenceKind
	RequestedAt Instant
	Source      CommandSource
	Flags       CommandFlags
}

// NewSequenceCommand constructs a command with default flags.
func NewSequenceCommand(kind SequenceKind, requestedAt Instant, source CommandSource) SequenceCommand {
	return SequenceCommand{Kind: kind, RequestedAt: requestedAt, Source: source}
}

// CommandQueue is the bounded channel between the scheduler and the
// orchestrator. Commands drain in strict FIFO order.
type CommandQueue struct {
	ch chan SequenceCommand
}

// NewCommandQueue creates a queue with the given capacity. Capacities
// below the default are raised to it.
func NewCommandQueue(capacity int) *CommandQueue {
	if capacity < constants.CommandQueueDepth {
		capacity = constants.CommandQueueDepth
	}
	return &CommandQueue{ch: make(chan SequenceCommand, capacity)}
}

// Enqueue pushes a command without blocking, failing with a queue-full
// error when no slot is free.
func (q *CommandQueue) Enqueue(cmd SequenceCommand) error {
	select {
	case q.ch <- cmd:
		return nil
	default:
		return NewSequenceError("enqueue", cmd.Kind, ErrCodeQueueFull, "command queue full")
	}
}

// TryDequeue pops the oldest command without blocking.
func (q *CommandQueue) TryDequeue() (SequenceCommand, bool) {
	select {
	case cmd := <-q.ch:
		return cmd, true
	default:
		return SequenceCommand{}, false
	}
}

// Receive exposes the consumer side for select loops. The orchestrator is
// the only receiver.
func (q *CommandQueue) Receive() <-chan SequenceCommand {
	return q.ch
}

// Len returns the current queue depth.
func (q *CommandQueue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *CommandQueue) Cap() int {
	return cap(q.ch)
}
