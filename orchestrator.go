package orinctl

import (
	"context"
	"fmt"
	"time"

	"github.com/NathanHowell/orinctl/internal/constants"
	"github.com/NathanHowell/orinctl/internal/logging"
)

// SequenceState is the phase of an in-flight sequence run.
type SequenceState int

const (
	StateIdle SequenceState = iota
	StateArming
	StateExecuting
	StateCooldown
	StateComplete
	StateError
)

func (s SequenceState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArming:
		return "arming"
	case StateExecuting:
		return "executing"
	case StateCooldown:
		return "cooldown"
	case StateComplete:
		return "complete"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// IsActive reports whether a run is in progress (arming, executing or
// cooling down).
func (s SequenceState) IsActive() bool {
	return s == StateArming || s == StateExecuting || s == StateCooldown
}

// IsTerminal reports whether the state represents a final outcome.
func (s SequenceState) IsTerminal() bool {
	return s == StateComplete || s == StateError
}

// SequenceErrorKind is the terminal failure attached to an errored run.
type SequenceErrorKind int

const (
	SeqErrBusy SequenceErrorKind = iota
	SeqErrBrownOutDetected
	SeqErrBridgeTimeout
	SeqErrRetryLimitExceeded
	SeqErrControlLinkLost
	SeqErrUnexpectedState
	SeqErrTelemetryBacklog
)

func (e SequenceErrorKind) String() string {
	switch e {
	case SeqErrBusy:
		return "busy"
	case SeqErrBrownOutDetected:
		return "brown-out-detected"
	case SeqErrBridgeTimeout:
		return "bridge-timeout"
	case SeqErrRetryLimitExceeded:
		return "retry-limit-exceeded"
	case SeqErrControlLinkLost:
		return "control-link-lost"
	case SeqErrUnexpectedState:
		return "unexpected-state"
	case SeqErrTelemetryBacklog:
		return "telemetry-backlog"
	default:
		return fmt.Sprintf("sequence-error(%d)", int(e))
	}
}

// TransitionError reports an invalid state transition. It signals an
// internal bug, never an operator mistake.
type TransitionError struct {
	From SequenceState
	To   SequenceState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("orinctl: invalid transition %s -> %s", e.From, e.To)
}

// validTransitions encodes the run state machine.
var validTransitions = map[SequenceState][]SequenceState{
	StateIdle:      {StateArming},
	StateArming:    {StateExecuting, StateArming, StateError},
	StateExecuting: {StateExecuting, StateCooldown, StateArming, StateError},
	StateCooldown:  {StateComplete, StateError},
}

func checkTransition(from, to SequenceState) error {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &TransitionError{From: from, To: to}
}

// SequenceRun is the mutable state for one in-flight command.
type SequenceRun struct {
	Command         SequenceCommand
	State           SequenceState
	Outcome         SequenceOutcome   // valid when State == StateComplete
	Err             SequenceErrorKind // valid when State == StateError
	RetryCount      uint8
	WaitingOnBridge bool

	startedAt Instant
	started   bool

	stepIndex      int // -1 when no step is active
	stepDeadline   Instant
	hasStepDeadline bool

	bridgeDeadline    Instant
	hasBridgeDeadline bool
	bridgeReleased    bool

	eventMark    EventID
	hasEventMark bool

	cooldownDeadline    Instant
	hasCooldownDeadline bool

	emitted []EventID
}

// NewSequenceRun creates a run in the arming state.
func NewSequenceRun(command SequenceCommand) *SequenceRun {
	return &SequenceRun{
		Command:   command,
		State:     StateArming,
		stepIndex: -1,
		emitted:   make([]EventID, 0, constants.MaxEmittedEvents),
	}
}

// TrackEvent records a telemetry id against this run. Returns false once
// the bounded list is full.
func (r *SequenceRun) TrackEvent(id EventID) bool {
	if len(r.emitted) >= constants.MaxEmittedEvents {
		return false
	}
	r.emitted = append(r.emitted, id)
	return true
}

// EmittedEvents lists the telemetry ids recorded so far.
func (r *SequenceRun) EmittedEvents() []EventID {
	return r.emitted
}

// StartedAt reports when step execution began.
func (r *SequenceRun) StartedAt() (Instant, bool) {
	return r.startedAt, r.started
}

// CurrentStepIndex reports the active step.
func (r *SequenceRun) CurrentStepIndex() (int, bool) {
	if r.stepIndex < 0 {
		return 0, false
	}
	return r.stepIndex, true
}

// StepDeadline reports the in-flight step deadline.
func (r *SequenceRun) StepDeadline() (Instant, bool) {
	return r.stepDeadline, r.hasStepDeadline
}

// CooldownDeadline reports the active cooldown deadline.
func (r *SequenceRun) CooldownDeadline() (Instant, bool) {
	return r.cooldownDeadline, r.hasCooldownDeadline
}

// beginRetry resets step bookkeeping for another attempt while keeping the
// command. The retry counter saturates.
func (r *SequenceRun) beginRetry() {
	if r.RetryCount < 0xFF {
		r.RetryCount++
	}
	r.emitted = r.emitted[:0]
	r.WaitingOnBridge = false
	r.State = StateArming
	r.started = false
	r.stepIndex = -1
	r.hasStepDeadline = false
	r.hasBridgeDeadline = false
	r.bridgeReleased = false
	r.hasEventMark = false
	r.hasCooldownDeadline = false
}

// CommandRejectionReason classifies why the orchestrator refused a command.
type CommandRejectionReason int

const (
	RejectionBusy CommandRejectionReason = iota
	RejectionMissingTemplate
)

func (r CommandRejectionReason) String() string {
	if r == RejectionBusy {
		return "busy"
	}
	return "missing-template"
}

// CommandRejection is the detail kept for the last refused command.
type CommandRejection struct {
	Command SequenceCommand
	Reason  CommandRejectionReason
}

// CompletionListener is notified when a run completes so cooldown
// accounting can extend from the completion instant. *Scheduler satisfies
// it.
type CompletionListener interface {
	NotifyCompleted(kind SequenceKind, completedAt Instant) error
}

type queuedCommand struct {
	command         SequenceCommand
	pendingEvent    EventID
	hasPendingEvent bool
}

type powerRecovery struct {
	active         bool
	attempt        uint8
	firstStable    Instant
	hasFirstStable bool
}

// OrchestratorConfig wires an Orchestrator's collaborators.
type OrchestratorConfig struct {
	// Queue is the bounded command queue the orchestrator consumes.
	Queue *CommandQueue
	// Driver receives strap transitions. Required.
	Driver StrapDriver
	// Clock supplies monotonic time. Required.
	Clock Clock
	// Templates defaults to a registry holding the full catalog.
	Templates *TemplateRegistry
	// Recorder defaults to a fresh recorder with the default ring size.
	Recorder *TelemetryRecorder
	// Monitor defaults to a fresh bridge monitor.
	Monitor *BridgeActivityMonitor
	// Power is optional; nil disables brown-out handling.
	Power PowerMonitor
	// Completion is optional; typically the Scheduler.
	Completion CompletionListener
	// Observer defaults to NoopObserver.
	Observer Observer
	// Logger defaults to the process logger.
	Logger *logging.Logger
	// BridgeActivityTimeout defaults to the conservative 30s.
	BridgeActivityTimeout time.Duration
	// PendingDepth defaults to the standard pending queue depth.
	PendingDepth int
}

// Orchestrator drives strap sequences. It is a deterministic state machine
// advanced by Tick; Run adapts it onto real time and channels. All methods
// must be called from the goroutine that owns the orchestrator, matching
// the single-threaded cooperative model of the firmware target.
type Orchestrator struct {
	queue      *CommandQueue
	templates  *TemplateRegistry
	driver     StrapDriver
	clock      Clock
	recorder   *TelemetryRecorder
	monitor    *BridgeActivityMonitor
	power      PowerMonitor
	completion CompletionListener
	observer   Observer
	logger     *logging.Logger

	bridgeTimeout time.Duration
	pendingDepth  int

	bridgeEvents chan BridgeActivityEvent

	pending       []queuedCommand
	run           *SequenceRun
	lastRejection *CommandRejection
	cooldowns     CooldownTracker

	recovery        powerRecovery
	lastPowerSample PowerSample
	hasPowerSample  bool
}

// NewOrchestrator validates the configuration and builds an orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Queue == nil {
		return nil, NewError("new-orchestrator", ErrCodeInvalidArgument, "command queue is required")
	}
	if cfg.Driver == nil {
		return nil, NewError("new-orchestrator", ErrCodeInvalidArgument, "strap driver is required")
	}
	if cfg.Clock == nil {
		return nil, NewError("new-orchestrator", ErrCodeInvalidArgument, "clock is required")
	}

	templates := cfg.Templates
	if templates == nil {
		templates = NewTemplateRegistry()
		for _, template := range Templates() {
			if err := templates.Register(template); err != nil {
				return nil, err
			}
		}
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = NewTelemetryRecorder(constants.TelemetryRingCapacity)
	}
	monitor := cfg.Monitor
	if monitor == nil {
		monitor = NewBridgeActivityMonitor()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = NoopObserver{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.BridgeActivityTimeout
	if timeout <= 0 {
		timeout = constants.DefaultBridgeActivityTimeout
	}
	pendingDepth := cfg.PendingDepth
	if pendingDepth <= 0 {
		pendingDepth = constants.PendingQueueDepth
	}

	return &Orchestrator{
		queue:         cfg.Queue,
		templates:     templates,
		driver:        cfg.Driver,
		clock:         cfg.Clock,
		recorder:      recorder,
		monitor:       monitor,
		power:         cfg.Power,
		completion:    cfg.Completion,
		observer:      observer,
		logger:        logger,
		bridgeTimeout: timeout,
		pendingDepth:  pendingDepth,
		bridgeEvents:  make(chan BridgeActivityEvent, constants.BridgeQueueDepth),
	}, nil
}

// Recorder exposes the telemetry recorder lent to collaborators.
func (o *Orchestrator) Recorder() *TelemetryRecorder {
	return o.recorder
}

// Monitor exposes the bridge activity monitor.
func (o *Orchestrator) Monitor() *BridgeActivityMonitor {
	return o.monitor
}

// ActiveRun returns the in-flight run, if any.
func (o *Orchestrator) ActiveRun() *SequenceRun {
	return o.run
}

// LastRejection returns the most recent refused command, if any.
func (o *Orchestrator) LastRejection() (CommandRejection, bool) {
	if o.lastRejection == nil {
		return CommandRejection{}, false
	}
	return *o.lastRejection, true
}

// TakeLastRejection clears and returns the last refused command.
func (o *Orchestrator) TakeLastRejection() (CommandRejection, bool) {
	rejection, ok := o.LastRejection()
	o.lastRejection = nil
	return rejection, ok
}

// PendingLen reports how many commands wait behind the active run.
func (o *Orchestrator) PendingLen() int {
	return len(o.pending)
}

// LastPowerSample reports the most recent rail observation.
func (o *Orchestrator) LastPowerSample() (PowerSample, bool) {
	return o.lastPowerSample, o.hasPowerSample
}

// BridgeEvents is the producer handle the bridge task sends activity
// observations into.
func (o *Orchestrator) BridgeEvents() chan<- BridgeActivityEvent {
	return o.bridgeEvents
}

// Accept folds an arriving command into the pending queue. While a run is
// active the arrival is recorded as CommandPending telemetry; when the
// pending queue is full the newest command is rejected as busy.
func (o *Orchestrator) Accept(cmd SequenceCommand, now Instant) {
	if len(o.pending) >= o.pendingDepth {
		o.lastRejection = &CommandRejection{Command: cmd, Reason: RejectionBusy}
		o.observer.ObserveCommandRejected(RejectionBusy)
		o.logger.Warn("command rejected", "kind", cmd.Kind, "reason", "busy")
		return
	}

	qc := queuedCommand{command: cmd}
	if o.run != nil {
		qc.pendingEvent = o.recorder.RecordCommandPending(cmd.Kind, len(o.pending), cmd.RequestedAt, now)
		qc.hasPendingEvent = true
	}
	o.pending = append(o.pending, qc)
	o.observer.ObserveCommandAccepted(cmd.Kind)
	o.observer.ObserveQueueDepth(len(o.pending))
}

// SubmitBridgeEvent feeds one bridge observation through the activity
// monitor and resolves an in-flight bridge wait when Jetson traffic
// arrives.
func (o *Orchestrator) SubmitBridgeEvent(event BridgeActivityEvent) {
	update, ok := o.monitor.ProcessEvent(event, o.recorder)
	if !ok {
		return
	}
	if update.ReleaseRecovery && o.run != nil && o.run.WaitingOnBridge {
		o.run.bridgeReleased = true
		if update.HasTelemetry {
			o.run.TrackEvent(update.TelemetryEvent)
		}
	}
}

// NotifyUSBConnect marks the control link attached.
func (o *Orchestrator) NotifyUSBConnect() {
	o.monitor.NotifyUSBConnect()
}

// NotifyUSBDisconnect handles a control-link drop. A run that was holding
// REC for console activity terminates with a control-link-lost error.
func (o *Orchestrator) NotifyUSBDisconnect(now Instant) {
	notice, ok := o.monitor.NotifyUSBDisconnect(now)
	if !ok {
		return
	}
	o.recorder.Record(EventUsbDisconnect, nil, now)
	if notice.RecoveryReleasePending && o.run != nil && o.run.State.IsActive() {
		o.failRun(SeqErrControlLinkLost, now)
	}
}

// Tick advances the state machine to the supplied instant and returns the
// next deadline the caller should wake at, if any.
func (o *Orchestrator) Tick(now Instant) (Instant, bool) {
	o.drainQueue(now)
	o.pollPower(now)
	for o.advance(now) {
	}
	return o.nextDeadline(now)
}

// Run drives Tick from the real clock until the context is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		now := o.clock.Now()
		next, ok := o.Tick(now)

		var timer <-chan time.Time
		if ok {
			wait := next.DurationSince(now)
			if wait <= 0 {
				wait = time.Millisecond
			}
			timer = o.clock.After(wait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-o.queue.Receive():
			o.Accept(cmd, o.clock.Now())
		case event := <-o.bridgeEvents:
			o.SubmitBridgeEvent(event)
		case <-timer:
		}
	}
}

func (o *Orchestrator) drainQueue(now Instant) {
	for {
		cmd, ok := o.queue.TryDequeue()
		if !ok {
			return
		}
		o.Accept(cmd, now)
	}
}

func (o *Orchestrator) pollPower(now Instant) {
	if o.power == nil || o.run == nil {
		return
	}

	if o.recovery.active {
		o.pollPowerRecovery(now)
		return
	}

	if o.run.State != StateArming && o.run.State != StateExecuting {
		return
	}

	status := o.power.Poll()
	switch status.State {
	case PowerStable:
		o.lastPowerSample = status.Sample
		o.hasPowerSample = true
	case PowerBrownOut:
		o.lastPowerSample = status.Sample
		o.hasPowerSample = true
		o.handleBrownOut(status.Sample, now)
	case PowerUnknown:
	}
}

func (o *Orchestrator) pollPowerRecovery(now Instant) {
	holdoff := o.power.StableHoldoff()
	status := o.power.Poll()

	switch status.State {
	case PowerStable:
		o.lastPowerSample = status.Sample
		o.hasPowerSample = true
		if !o.recovery.hasFirstStable {
			o.recovery.firstStable = status.Sample.Timestamp
			o.recovery.hasFirstStable = true
		}
		if status.Sample.Timestamp.DurationSince(o.recovery.firstStable) >= holdoff {
			o.finishPowerRecovery(status.Sample.Timestamp)
		}
	case PowerBrownOut:
		o.lastPowerSample = status.Sample
		o.hasPowerSample = true
		o.recovery.hasFirstStable = false
	case PowerUnknown:
		// An absent reading counts toward the holdoff; the rail monitor
		// reports brown-outs explicitly.
		if !o.recovery.hasFirstStable {
			o.recovery.firstStable = now
			o.recovery.hasFirstStable = true
		}
		if now.DurationSince(o.recovery.firstStable) >= holdoff {
			o.finishPowerRecovery(now)
		}
	}
}

func (o *Orchestrator) finishPowerRecovery(at Instant) {
	id := o.recorder.Record(EventPowerStable, nil, at)
	if o.run != nil {
		o.run.TrackEvent(id)
	}
	o.recovery = powerRecovery{}
	o.logger.Info("power stable after brown-out", "attempt", o.runRetryCount())
}

func (o *Orchestrator) runRetryCount() uint8 {
	if o.run == nil {
		return 0
	}
	return o.run.RetryCount
}

func (o *Orchestrator) handleBrownOut(sample PowerSample, now Instant) {
	run := o.run
	template, ok := o.templates.Get(run.Command.Kind)
	if !ok {
		o.failRun(SeqErrUnexpectedState, now)
		return
	}

	budget := effectiveRetryBudget(run.Command.Flags, template)
	o.logger.Warn("brown-out detected",
		"retry", run.RetryCount+1, "budget", budget, "millivolts", sample.Millivolts)

	if run.RetryCount >= budget {
		o.logger.Error("brown-out retry budget exhausted", "budget", budget)
		o.failRun(SeqErrRetryLimitExceeded, now)
		return
	}

	if run.WaitingOnBridge {
		o.monitor.SetPending(false)
	}
	run.beginRetry()
	o.observer.ObserveBrownOutRetry()
	o.recovery = powerRecovery{active: true, attempt: run.RetryCount}
	o.logger.Info("retrying sequence after brown-out", "attempt", run.RetryCount, "budget", budget)
}

func effectiveRetryBudget(flags CommandFlags, template SequenceTemplate) uint8 {
	if flags.HasRetryOverride {
		return flags.RetryOverride
	}
	if template.MaxRetries > 0 {
		return template.MaxRetries
	}
	return constants.DefaultBrownOutRetries
}

// advance performs at most one state change at the supplied instant and
// reports whether anything happened.
func (o *Orchestrator) advance(now Instant) bool {
	if o.run == nil {
		if len(o.pending) == 0 {
			return false
		}
		qc := o.pending[0]
		o.pending = o.pending[1:]
		o.startQueued(qc, now)
		return true
	}

	run := o.run
	if run.State.IsTerminal() {
		o.finishRun()
		return true
	}

	if o.recovery.active {
		return false
	}

	template, ok := o.templates.Get(run.Command.Kind)
	if !ok {
		o.failRun(SeqErrUnexpectedState, now)
		return true
	}

	switch run.State {
	case StateArming:
		if flags := run.Command.Flags; flags.StartAfter > 0 {
			if now < run.Command.RequestedAt.Add(flags.StartAfter) {
				return false
			}
		}
		id := o.recorder.RecordCommandStarted(run.Command.Kind, len(o.pending), run.Command.RequestedAt, now)
		run.TrackEvent(id)
		run.startedAt = now
		run.started = true
		o.transition(run, StateExecuting)
		o.enterStep(template, 0, now)
		return true

	case StateExecuting:
		step := template.Steps[run.stepIndex]
		if o.stepComplete(run, step, now) {
			next := run.stepIndex + 1
			if next >= len(template.Steps) {
				o.transition(run, StateCooldown)
				run.cooldownDeadline = now.Add(template.Cooldown)
				run.hasCooldownDeadline = true
			} else {
				o.enterStep(template, next, now)
			}
			return true
		}
		if run.WaitingOnBridge && run.hasBridgeDeadline && now >= run.bridgeDeadline {
			o.monitor.SetPending(false)
			o.failRun(SeqErrBridgeTimeout, now)
			return true
		}
		return false

	case StateCooldown:
		if run.hasCooldownDeadline && now >= run.cooldownDeadline {
			o.completeRun(OutcomeCompleted, now)
			return true
		}
		return false
	}

	return false
}

func (o *Orchestrator) startQueued(qc queuedCommand, now Instant) {
	cmd := qc.command

	if !o.templates.Contains(cmd.Kind) {
		o.lastRejection = &CommandRejection{Command: cmd, Reason: RejectionMissingTemplate}
		o.observer.ObserveCommandRejected(RejectionMissingTemplate)
		o.logger.Error("command rejected", "kind", cmd.Kind, "reason", "missing-template")
		return
	}

	if !o.cooldowns.IsReady(cmd.Kind, now) {
		o.recorder.RecordSequenceCompletion(cmd.Kind, OutcomeSkippedCooldown, 0, false, now, 0, nil)
		o.observer.ObserveSequenceOutcome(cmd.Kind, OutcomeSkippedCooldown, 0)
		o.logger.Info("sequence skipped", "kind", cmd.Kind, "reason", "cooldown")
		return
	}

	run := NewSequenceRun(cmd)
	if qc.hasPendingEvent {
		run.TrackEvent(qc.pendingEvent)
	}
	o.run = run
	o.recovery = powerRecovery{}
	o.lastRejection = nil
}

func (o *Orchestrator) enterStep(template SequenceTemplate, index int, now Instant) {
	run := o.run
	step := template.Steps[index]

	run.stepIndex = index
	run.WaitingOnBridge = false
	run.bridgeReleased = false
	run.hasStepDeadline = false
	run.hasBridgeDeadline = false
	run.hasEventMark = false

	o.driver.Set(step.Line, step.Action.Level())
	id := o.recorder.RecordStrapTransition(step.Line, step.Action, now)
	run.TrackEvent(id)
	o.observer.ObserveStrapTransition(step.Line, step.Action)

	switch step.Completion.Mode {
	case CompleteAfterDuration:
		run.stepDeadline = now.Add(step.HoldFor)
		run.hasStepDeadline = true
	case CompleteOnBridgeActivity:
		run.WaitingOnBridge = true
		o.monitor.SetPending(true)
		run.bridgeDeadline = now.Add(o.bridgeTimeout)
		run.hasBridgeDeadline = true
	case CompleteOnEvent:
		run.eventMark = id
		run.hasEventMark = true
	}
}

func (o *Orchestrator) stepComplete(run *SequenceRun, step StrapStep, now Instant) bool {
	switch step.Completion.Mode {
	case CompleteAfterDuration:
		return run.hasStepDeadline && now >= run.stepDeadline
	case CompleteOnBridgeActivity:
		if run.bridgeReleased {
			run.WaitingOnBridge = false
			return true
		}
		return false
	case CompleteOnEvent:
		return run.hasEventMark && o.recorder.SeenSince(run.eventMark, step.Completion.Event)
	}
	return false
}

func (o *Orchestrator) transition(run *SequenceRun, next SequenceState) {
	if err := checkTransition(run.State, next); err != nil {
		o.logger.Error("state machine bug", "error", err)
		run.State = StateError
		run.Err = SeqErrUnexpectedState
		return
	}
	run.State = next
}

func (o *Orchestrator) completeRun(outcome SequenceOutcome, now Instant) {
	run := o.run
	template, _ := o.templates.Get(run.Command.Kind)

	fault := o.faultDetail(run, false, 0)
	o.recorder.RecordSequenceCompletion(
		run.Command.Kind, outcome, run.startedAt, run.started, now, len(run.emitted), fault)

	run.State = StateComplete
	run.Outcome = outcome

	o.cooldowns.Reserve(run.Command.Kind, now, template.Cooldown)
	if o.completion != nil {
		if err := o.completion.NotifyCompleted(run.Command.Kind, now); err != nil {
			o.logger.Warn("completion notification failed", "error", err)
		}
	}

	duration := now.DurationSince(run.startedAt)
	o.observer.ObserveSequenceOutcome(run.Command.Kind, outcome, duration)
	o.logger.Info("sequence complete",
		"kind", run.Command.Kind, "outcome", outcome, "duration", duration)
}

func (o *Orchestrator) failRun(errKind SequenceErrorKind, now Instant) {
	run := o.run
	if run == nil {
		return
	}

	fault := o.faultDetail(run, true, errKind)
	o.recorder.RecordSequenceCompletion(
		run.Command.Kind, OutcomeFailed, run.startedAt, run.started, now, len(run.emitted), fault)

	if run.WaitingOnBridge {
		o.monitor.SetPending(false)
		run.WaitingOnBridge = false
	}

	run.State = StateError
	run.Err = errKind

	var duration time.Duration
	if run.started {
		duration = now.DurationSince(run.startedAt)
	}
	o.observer.ObserveSequenceOutcome(run.Command.Kind, OutcomeFailed, duration)
	o.logger.Warn("sequence failed", "kind", run.Command.Kind, "error", errKind)
}

func (o *Orchestrator) faultDetail(run *SequenceRun, failed bool, errKind SequenceErrorKind) *FaultRecoveryTelemetry {
	if failed {
		var reason FaultRecoveryReason
		switch errKind {
		case SeqErrRetryLimitExceeded, SeqErrBrownOutDetected:
			reason = ReasonBrownOutDetected
		case SeqErrControlLinkLost:
			reason = ReasonControlLinkLost
		case SeqErrBridgeTimeout:
			reason = ReasonConsoleWatchdogTimeout
		default:
			if run.Command.Kind != FaultRecovery {
				return nil
			}
			reason = ReasonManualRequest
		}
		return &FaultRecoveryTelemetry{Reason: reason, Retries: run.RetryCount}
	}

	if run.Command.Kind == FaultRecovery {
		return &FaultRecoveryTelemetry{Reason: ReasonManualRequest, Retries: run.RetryCount}
	}
	if run.RetryCount > 0 {
		return &FaultRecoveryTelemetry{Reason: ReasonBrownOutDetected, Retries: run.RetryCount}
	}
	return nil
}

func (o *Orchestrator) finishRun() {
	o.run = nil
	o.recovery = powerRecovery{}
	o.hasPowerSample = false
}

func (o *Orchestrator) nextDeadline(now Instant) (Instant, bool) {
	run := o.run
	if run == nil {
		return 0, false
	}

	var (
		deadline Instant
		have     bool
	)
	consider := func(at Instant) {
		if !have || at < deadline {
			deadline = at
			have = true
		}
	}

	if o.power != nil && (o.recovery.active || run.State == StateArming || run.State == StateExecuting) {
		consider(now.Add(o.power.SampleInterval()))
	}

	if o.recovery.active {
		return deadline, have
	}

	switch run.State {
	case StateArming:
		if flags := run.Command.Flags; flags.StartAfter > 0 {
			consider(run.Command.RequestedAt.Add(flags.StartAfter))
		}
	case StateExecuting:
		if run.hasStepDeadline {
			consider(run.stepDeadline)
		}
		if run.hasBridgeDeadline {
			consider(run.bridgeDeadline)
		}
	case StateCooldown:
		if run.hasCooldownDeadline {
			consider(run.cooldownDeadline)
		}
	}

	return deadline, have
}
