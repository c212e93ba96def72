package repl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orinctl "github.com/NathanHowell/orinctl"
)

// executorFixture wires an executor to a real scheduler with a bounded
// queue so tests can inspect what was admitted.
type executorFixture struct {
	executor  *Executor
	scheduler *orinctl.Scheduler
	queue     *orinctl.CommandQueue
}

func newExecutorFixture(t *testing.T, queueDepth int) *executorFixture {
	t.Helper()
	queue := orinctl.NewCommandQueue(queueDepth)
	scheduler := orinctl.NewScheduler(queue)
	require.NoError(t, scheduler.RegisterDefaults())
	return &executorFixture{
		executor:  NewExecutor(scheduler),
		scheduler: scheduler,
		queue:     queue,
	}
}

func (f *executorFixture) drain() []orinctl.SequenceCommand {
	var commands []orinctl.SequenceCommand
	for {
		cmd, ok := f.queue.TryDequeue()
		if !ok {
			return commands
		}
		commands = append(commands, cmd)
	}
}

func TestRebootNowEnqueuesImmediately(t *testing.T) {
	f := newExecutorFixture(t, 4)
	now := orinctl.Instant(1_000)

	ack, err := f.executor.Execute("reboot now", now, orinctl.SourceUSBHost)
	require.NoError(t, err)
	assert.Equal(t, RebootAck{RequestedAt: now}, ack)

	commands := f.drain()
	require.Len(t, commands, 1)
	assert.Equal(t, orinctl.NormalReboot, commands[0].Kind)
	assert.Equal(t, now, commands[0].RequestedAt)
	assert.Zero(t, commands[0].Flags.StartAfter)
}

func TestRebootDelaySetsStartAfter(t *testing.T) {
	f := newExecutorFixture(t, 4)
	now := orinctl.Instant(2_000)

	ack, err := f.executor.Execute("reboot delay 250ms", now, orinctl.SourceUSBHost)
	require.NoError(t, err)
	assert.Equal(t, RebootAck{RequestedAt: now, StartAfter: 250 * time.Millisecond}, ack)

	commands := f.drain()
	require.Len(t, commands, 1)
	assert.Equal(t, 250*time.Millisecond, commands[0].Flags.StartAfter)
}

func TestRebootDelayZeroBehavesLikeNow(t *testing.T) {
	f := newExecutorFixture(t, 4)

	ack, err := f.executor.Execute("reboot delay 0ms", 0, orinctl.SourceUSBHost)
	require.NoError(t, err)
	assert.Equal(t, RebootAck{}, ack)

	commands := f.drain()
	require.Len(t, commands, 1)
	assert.Zero(t, commands[0].Flags.StartAfter)
}

func TestRecoveryEnterEnqueuesRecoveryEntry(t *testing.T) {
	f := newExecutorFixture(t, 4)
	now := orinctl.Instant(5_000)

	ack, err := f.executor.Execute("recovery enter", now, orinctl.SourceUSBHost)
	require.NoError(t, err)
	assert.Equal(t, RecoveryAck{RequestedAt: now, Sequence: orinctl.RecoveryEntry, Action: RecoveryEnter}, ack)

	commands := f.drain()
	require.Len(t, commands, 1)
	assert.Equal(t, orinctl.RecoveryEntry, commands[0].Kind)
	assert.False(t, commands[0].Flags.ForceRecovery)
}

func TestRecoveryNowEnqueuesRecoveryImmediate(t *testing.T) {
	f := newExecutorFixture(t, 4)
	now := orinctl.Instant(6_000)

	ack, err := f.executor.Execute("recovery now", now, orinctl.SourceUSBHost)
	require.NoError(t, err)
	assert.Equal(t, RecoveryAck{RequestedAt: now, Sequence: orinctl.RecoveryImmediate, Action: RecoveryNow}, ack)

	commands := f.drain()
	require.Len(t, commands, 1)
	assert.Equal(t, orinctl.RecoveryImmediate, commands[0].Kind)
	assert.True(t, commands[0].Flags.ForceRecovery)
}

func TestRecoveryExitReusesNormalReboot(t *testing.T) {
	f := newExecutorFixture(t, 4)
	now := orinctl.Instant(7_000)

	ack, err := f.executor.Execute("recovery exit", now, orinctl.SourceUSBHost)
	require.NoError(t, err)
	assert.Equal(t, RecoveryAck{RequestedAt: now, Sequence: orinctl.NormalReboot, Action: RecoveryExit}, ack)

	commands := f.drain()
	require.Len(t, commands, 1)
	assert.Equal(t, orinctl.NormalReboot, commands[0].Kind)
}

func TestFaultRecoverDefaultsToTemplateBudget(t *testing.T) {
	f := newExecutorFixture(t, 4)
	now := orinctl.Instant(8_000)

	ack, err := f.executor.Execute("fault recover", now, orinctl.SourceUSBHost)
	require.NoError(t, err)
	assert.Equal(t, FaultAck{
		RequestedAt: now,
		Sequence:    orinctl.FaultRecovery,
		RetryBudget: orinctl.FaultRecoveryMaxRetries,
	}, ack)

	commands := f.drain()
	require.Len(t, commands, 1)
	assert.False(t, commands[0].Flags.HasRetryOverride,
		"default invocation should rely on the template retry budget")
}

func TestFaultRecoverAcceptsRetryOverride(t *testing.T) {
	f := newExecutorFixture(t, 4)

	ack, err := f.executor.Execute("fault recover retries=2", 0, orinctl.SourceUSBHost)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), ack.(FaultAck).RetryBudget)

	commands := f.drain()
	require.Len(t, commands, 1)
	assert.True(t, commands[0].Flags.HasRetryOverride)
	assert.Equal(t, uint8(2), commands[0].Flags.RetryOverride)
}

func TestFaultRecoverRejectsOutOfRangeOverride(t *testing.T) {
	f := newExecutorFixture(t, 4)

	for _, line := range []string{"fault recover retries=0", "fault recover retries=5"} {
		_, err := f.executor.Execute(line, 0, orinctl.SourceUSBHost)
		require.Error(t, err, line)
		assert.True(t, orinctl.IsCode(err, orinctl.ErrCodeUnsupported))

		var coreErr *orinctl.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, "fault retries must be 1-3", coreErr.Msg)
	}

	assert.Empty(t, f.drain(), "rejected overrides must not enqueue")
}

func TestStatusAndHelpAreUnsupported(t *testing.T) {
	f := newExecutorFixture(t, 4)

	_, err := f.executor.Execute("status", 0, orinctl.SourceUSBHost)
	assert.True(t, orinctl.IsCode(err, orinctl.ErrCodeUnsupported))

	_, err = f.executor.Execute("help reboot", 0, orinctl.SourceUSBHost)
	assert.True(t, orinctl.IsCode(err, orinctl.ErrCodeUnsupported))
}

func TestParseErrorIsReturned(t *testing.T) {
	f := newExecutorFixture(t, 4)
	_, err := f.executor.Execute("reboot later please", 0, orinctl.SourceUSBHost)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestQueueFullSurfacesScheduleError(t *testing.T) {
	queue := orinctl.NewCommandQueue(4)
	scheduler := orinctl.NewScheduler(queue)
	require.NoError(t, scheduler.RegisterDefaults())
	executor := NewExecutor(scheduler)

	// Fill the queue with distinct kinds so cooldowns do not interfere.
	kinds := []string{"reboot now", "recovery enter", "recovery now", "fault recover"}
	for _, line := range kinds {
		_, err := executor.Execute(line, 0, orinctl.SourceUSBHost)
		require.NoError(t, err, line)
	}

	_, err := executor.Execute("reboot now", orinctl.Instant(2_000_000), orinctl.SourceUSBHost)
	require.Error(t, err)
	assert.True(t, orinctl.IsCode(err, orinctl.ErrCodeQueueFull))
}
