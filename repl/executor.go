package repl

import (
	"time"

	orinctl "github.com/NathanHowell/orinctl"
)

// Enqueuer abstracts the scheduler the executor hands admitted commands
// to. *orinctl.Scheduler satisfies it.
type Enqueuer interface {
	EnqueueWithFlags(kind orinctl.SequenceKind, requestedAt orinctl.Instant, source orinctl.CommandSource, flags orinctl.CommandFlags) error
}

// Ack is the structured acknowledgement returned for an executed command.
type Ack interface {
	ack()
}

// RebootAck summarizes a queued reboot. StartAfter of zero means the
// reboot was requested immediately.
type RebootAck struct {
	RequestedAt orinctl.Instant
	StartAfter  time.Duration
}

func (RebootAck) ack() {}

// RecoveryAck summarizes a queued recovery command.
type RecoveryAck struct {
	RequestedAt orinctl.Instant
	Sequence    orinctl.SequenceKind
	Action      RecoveryAction
}

func (RecoveryAck) ack() {}

// FaultAck summarizes a queued fault recovery command.
type FaultAck struct {
	RequestedAt orinctl.Instant
	Sequence    orinctl.SequenceKind
	RetryBudget uint8
}

func (FaultAck) ack() {}

// Executor glues the grammar to the scheduler: parse, validate flags, and
// enqueue. Errors fall into three families: *ParseError from the grammar,
// unsupported-command errors, and schedule errors propagated from the
// Enqueuer — all user-facing text stays above this layer.
type Executor struct {
	scheduler Enqueuer
}

// NewExecutor creates an executor around the provided scheduler.
func NewExecutor(scheduler Enqueuer) *Executor {
	return &Executor{scheduler: scheduler}
}

// Execute parses and executes one REPL line.
func (e *Executor) Execute(line string, now orinctl.Instant, source orinctl.CommandSource) (Ack, error) {
	cmd, err := Parse(line)
	if err != nil {
		return nil, err
	}
	return e.Dispatch(cmd, now, source)
}

// Dispatch executes an already parsed command.
func (e *Executor) Dispatch(cmd Command, now orinctl.Instant, source orinctl.CommandSource) (Ack, error) {
	switch c := cmd.(type) {
	case RebootCommand:
		return e.handleReboot(c, now, source)
	case RecoveryCommand:
		return e.handleRecovery(c, now, source)
	case FaultCommand:
		return e.handleFault(c, now, source)
	case StatusCommand:
		return nil, orinctl.NewError("execute", orinctl.ErrCodeUnsupported, "status")
	case HelpCommand:
		return nil, orinctl.NewError("execute", orinctl.ErrCodeUnsupported, "help")
	default:
		return nil, orinctl.NewError("execute", orinctl.ErrCodeUnsupported, "unknown command")
	}
}

func (e *Executor) handleReboot(cmd RebootCommand, now orinctl.Instant, source orinctl.CommandSource) (Ack, error) {
	var flags orinctl.CommandFlags
	var startAfter time.Duration
	if cmd.Mode == RebootDelay && cmd.Delay > 0 {
		flags.StartAfter = cmd.Delay
		startAfter = cmd.Delay
	}

	if err := e.scheduler.EnqueueWithFlags(orinctl.NormalReboot, now, source, flags); err != nil {
		return nil, err
	}
	return RebootAck{RequestedAt: now, StartAfter: startAfter}, nil
}

func (e *Executor) handleRecovery(cmd RecoveryCommand, now orinctl.Instant, source orinctl.CommandSource) (Ack, error) {
	var (
		sequence orinctl.SequenceKind
		flags    orinctl.CommandFlags
	)
	switch cmd.Action {
	case RecoveryEnter:
		sequence = orinctl.RecoveryEntry
	case RecoveryExit:
		// Leaving recovery is a plain reboot with REC released.
		sequence = orinctl.NormalReboot
	case RecoveryNow:
		sequence = orinctl.RecoveryImmediate
		flags.ForceRecovery = true
	}

	if err := e.scheduler.EnqueueWithFlags(sequence, now, source, flags); err != nil {
		return nil, err
	}
	return RecoveryAck{RequestedAt: now, Sequence: sequence, Action: cmd.Action}, nil
}

func (e *Executor) handleFault(cmd FaultCommand, now orinctl.Instant, source orinctl.CommandSource) (Ack, error) {
	budget := uint8(orinctl.FaultRecoveryMaxRetries)
	var flags orinctl.CommandFlags

	if cmd.HasRetries {
		if cmd.Retries == 0 || cmd.Retries > orinctl.FaultRecoveryMaxRetries {
			return nil, orinctl.NewError("execute", orinctl.ErrCodeUnsupported, "fault retries must be 1-3")
		}
		budget = cmd.Retries
		flags.RetryOverride = cmd.Retries
		flags.HasRetryOverride = true
	}

	if err := e.scheduler.EnqueueWithFlags(orinctl.FaultRecovery, now, source, flags); err != nil {
		return nil, err
	}
	return FaultAck{RequestedAt: now, Sequence: orinctl.FaultRecovery, RetryBudget: budget}, nil
}
