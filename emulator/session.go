package emulator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	orinctl "github.com/NathanHowell/orinctl"
	"github.com/NathanHowell/orinctl/internal/logging"
	"github.com/NathanHowell/orinctl/repl"
)

// HelpTopic pairs a topic keyword with its help line.
type HelpTopic struct {
	Name   string
	Detail string
}

// HelpTopics is the operator help table rendered by `help`.
var HelpTopics = []HelpTopic{
	{"reboot", "reboot [now|delay <duration>]  - queue the normal reboot sequence"},
	{"recovery", "recovery [enter|exit|now]    - manage recovery strap flows"},
	{"fault", "fault recover [retries=<1-3>]   - attempt the fault recovery sequence"},
	{"status", "status                        - display orchestrator state"},
	{"help", "help [topic]                    - show help for a command"},
}

// Session is the synchronous emulator REPL: it parses operator lines,
// admits sequences through a real scheduler, renders the timed step plan,
// and synthesizes completion so transcripts show the full cooldown math
// without waiting out the holds.
type Session struct {
	executor  *repl.Executor
	scheduler *orinctl.Scheduler
	queue     *orinctl.CommandQueue

	clock      orinctl.Clock
	startedAt  orinctl.Instant
	transcript *Transcript
	status     repl.StatusProvider
	logger     *logging.Logger

	commandCount int
}

// SessionOptions carries the session's optional collaborators.
type SessionOptions struct {
	// Clock defaults to the host monotonic clock.
	Clock orinctl.Clock
	// Transcript enables exchange logging when non-nil.
	Transcript *Transcript
	// Status supplies live state for the `status` command.
	Status repl.StatusProvider
	// Logger defaults to the process logger.
	Logger *logging.Logger
}

// NewSession builds a session with the full sequence catalog registered.
func NewSession(cfg Config, options *SessionOptions) (*Session, error) {
	if options == nil {
		options = &SessionOptions{}
	}
	clock := options.Clock
	if clock == nil {
		clock = orinctl.NewSystemClock()
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.Default()
	}

	queue := orinctl.NewCommandQueue(cfg.QueueDepth)
	scheduler := orinctl.NewScheduler(queue)
	if err := scheduler.RegisterDefaults(); err != nil {
		return nil, err
	}

	return &Session{
		executor:   repl.NewExecutor(scheduler),
		scheduler:  scheduler,
		queue:      queue,
		clock:      clock,
		startedAt:  clock.Now(),
		transcript: options.Transcript,
		status:     options.Status,
		logger:     logger,
	}, nil
}

// Scheduler exposes the underlying scheduler, mainly for tests.
func (s *Session) Scheduler() *orinctl.Scheduler {
	return s.scheduler
}

// HandleLine processes one operator line and returns the response lines.
func (s *Session) HandleLine(line string) ([]string, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}

	elapsed := s.elapsed()
	if err := s.logHost(elapsed, trimmed); err != nil {
		return nil, err
	}

	if strings.EqualFold(trimmed, "help") {
		return s.handleHelp("", elapsed)
	}
	if rest, ok := cutPrefixFold(trimmed, "help "); ok {
		return s.handleHelp(strings.TrimSpace(rest), elapsed)
	}
	if strings.EqualFold(trimmed, "status") {
		return s.handleStatus(elapsed)
	}

	now := s.clock.Now()
	ack, err := s.executor.Execute(trimmed, now, orinctl.SourceUSBHost)
	if err != nil {
		return s.handleError(err, elapsed)
	}

	switch a := ack.(type) {
	case repl.RebootAck:
		return s.handleSequence("reboot", orinctl.NormalReboot, a.RequestedAt, a.StartAfter, elapsed)
	case repl.RecoveryAck:
		label := "recovery " + a.Action.String()
		return s.handleSequence(label, a.Sequence, a.RequestedAt, 0, elapsed)
	case repl.FaultAck:
		label := fmt.Sprintf("fault recover budget=%d", a.RetryBudget)
		return s.handleSequence(label, a.Sequence, a.RequestedAt, 0, elapsed)
	default:
		lines := []string{"ERR internal unexpected acknowledgement"}
		return lines, s.logOutput(elapsed, lines)
	}
}

func (s *Session) handleError(err error, elapsed time.Duration) ([]string, error) {
	var lines []string

	var parseErr *repl.ParseError
	var coreErr *orinctl.Error
	switch {
	case errors.As(err, &parseErr):
		lines = []string{fmt.Sprintf("ERR syntax %s", parseErr)}
	case errors.As(err, &coreErr) && coreErr.Code == orinctl.ErrCodeUnsupported:
		lines = []string{fmt.Sprintf("ERR unsupported %s (pending implementation)", coreErr.Msg)}
	default:
		lines = []string{fmt.Sprintf("ERR schedule %s", s.describeScheduleError(err))}
	}

	return lines, s.logOutput(elapsed, lines)
}

func (s *Session) describeScheduleError(err error) string {
	var coreErr *orinctl.Error
	if !errors.As(err, &coreErr) {
		return err.Error()
	}
	switch coreErr.Code {
	case orinctl.ErrCodeQueueFull:
		return "queue-full"
	case orinctl.ErrCodeDisconnected:
		return "queue-disconnected"
	case orinctl.ErrCodeMissingTemplate:
		return fmt.Sprintf("missing-template %s", coreErr.Seq)
	case orinctl.ErrCodeCooldownActive:
		ready := coreErr.ReadyAt.DurationSince(s.startedAt)
		return fmt.Sprintf("cooldown-active ready=+%dms", ready.Milliseconds())
	default:
		return string(coreErr.Code)
	}
}

func (s *Session) handleHelp(topic string, elapsed time.Duration) ([]string, error) {
	var lines []string
	if topic != "" {
		if detail, ok := findHelpTopic(topic); ok {
			lines = append(lines, detail)
		} else {
			lines = append(lines, fmt.Sprintf("No help available for `%s`.", topic))
			lines = append(lines, fmt.Sprintf("Available topics: %s", helpTopicList()))
		}
	} else {
		lines = append(lines, "Available commands:")
		for _, t := range HelpTopics {
			lines = append(lines, "  "+t.Detail)
		}
		lines = append(lines, "Type `help <topic>` for a specific command.")
	}
	return lines, s.logOutput(elapsed, lines)
}

func (s *Session) handleStatus(elapsed time.Duration) ([]string, error) {
	var lines []string
	if s.status == nil {
		lines = []string{"Status unavailable: no orchestrator attached to this session."}
	} else if snap, ok := s.status.Snapshot(s.clock.Now()); ok {
		lines = repl.FormatStatus(snap)
	} else {
		lines = []string{"Status unavailable."}
	}
	return lines, s.logOutput(elapsed, lines)
}

func (s *Session) handleSequence(
	label string,
	kind orinctl.SequenceKind,
	requestedAt orinctl.Instant,
	startAfter time.Duration,
	elapsed time.Duration,
) ([]string, error) {
	s.commandCount++
	sequenceID := s.commandCount

	queueDepth := s.queue.Len()
	template, ok := s.scheduler.Templates().Get(kind)
	if !ok {
		lines := []string{fmt.Sprintf("ERR schedule missing-template %s", kind)}
		return lines, s.logOutput(elapsed, lines)
	}

	runDuration := template.RunDuration()
	completion := requestedAt.Add(startAfter).Add(runDuration)
	cooldownReady := completion.Add(template.Cooldown)

	var lines []string
	lines = append(lines, fmt.Sprintf(
		"OK %s queued seq=%d at=+%dms start-after=%s cooldown=%s ready=+%dms queue-depth=%d",
		label,
		sequenceID,
		requestedAt.DurationSince(s.startedAt).Milliseconds(),
		formatDurationShort(startAfter),
		formatDurationShort(template.Cooldown),
		cooldownReady.DurationSince(s.startedAt).Milliseconds(),
		queueDepth,
	))
	lines = append(lines, fmt.Sprintf(
		"%s run-duration=%s steps=%d",
		kind, formatDurationShort(runDuration), template.StepCount(),
	))
	for i, step := range template.Steps {
		lines = append(lines, describeStep(i+1, step))
	}

	// Transcript sessions do not wait out the holds; fold the synthetic
	// completion into cooldown accounting and drain the queue slot.
	if err := s.scheduler.NotifyCompleted(kind, completion); err != nil {
		s.logger.Warn("completion accounting failed", "error", err)
	}
	s.queue.TryDequeue()

	return lines, s.logOutput(elapsed, lines)
}

func (s *Session) elapsed() time.Duration {
	return s.clock.Now().DurationSince(s.startedAt)
}

func (s *Session) logHost(elapsed time.Duration, line string) error {
	if s.transcript == nil {
		return nil
	}
	return s.transcript.AppendLine(elapsed, RoleHost, line)
}

func (s *Session) logOutput(elapsed time.Duration, lines []string) error {
	if s.transcript == nil {
		return nil
	}
	for _, line := range lines {
		if err := s.transcript.AppendLine(elapsed, RoleEmulator, line); err != nil {
			return err
		}
	}
	return nil
}

func findHelpTopic(topic string) (string, bool) {
	for _, t := range HelpTopics {
		if strings.EqualFold(t.Name, topic) {
			return t.Detail, true
		}
	}
	return "", false
}

func helpTopicList() string {
	names := make([]string, 0, len(HelpTopics))
	for _, t := range HelpTopics {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

func describeStep(index int, step orinctl.StrapStep) string {
	mode := "after-duration"
	switch step.Completion.Mode {
	case orinctl.CompleteOnBridgeActivity:
		mode = "bridge-activity"
	case orinctl.CompleteOnEvent:
		mode = fmt.Sprintf("event(%s)", step.Completion.Event)
	}
	return fmt.Sprintf(
		"  %d. %s %s hold=%s %s mode=%s",
		index,
		step.Strap().Name,
		step.Action,
		formatDurationShort(step.HoldFor),
		describeConstraints(step.Constraints),
		mode,
	)
}

func describeConstraints(c orinctl.TimingConstraints) string {
	switch {
	case c.MinHold > 0 && c.MaxHold > 0:
		return fmt.Sprintf("limits=%s..%s", formatDurationShort(c.MinHold), formatDurationShort(c.MaxHold))
	case c.MinHold > 0:
		return fmt.Sprintf("min=%s", formatDurationShort(c.MinHold))
	case c.MaxHold > 0:
		return fmt.Sprintf("max=%s", formatDurationShort(c.MaxHold))
	default:
		return "limits=unbounded"
	}
}

func formatDurationShort(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}
