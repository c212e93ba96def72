package emulator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orinctl "github.com/NathanHowell/orinctl"
)

func newTestSession(t *testing.T, options *SessionOptions) (*Session, *orinctl.ManualClock) {
	t.Helper()
	clock := orinctl.NewManualClock(0)
	if options == nil {
		options = &SessionOptions{}
	}
	options.Clock = clock
	session, err := NewSession(DefaultConfig(), options)
	require.NoError(t, err)
	return session, clock
}

func TestSessionQueuesReboot(t *testing.T) {
	session, _ := newTestSession(t, nil)

	lines, err := session.HandleLine("reboot")
	require.NoError(t, err)
	require.Len(t, lines, 6, "summary, sequence line, and four steps")

	assert.Equal(t,
		"OK reboot queued seq=1 at=+0ms start-after=0ms cooldown=1.000s ready=+2220ms queue-depth=1",
		lines[0])
	assert.Equal(t, "normal-reboot run-duration=1.220s steps=4", lines[1])
	assert.Contains(t, lines[2], "1. PWR* assert-low hold=200ms limits=180ms..220ms mode=after-duration")
	assert.Contains(t, lines[5], "4. RESET* release-high hold=0ms limits=unbounded mode=after-duration")
}

func TestSessionReportsCooldown(t *testing.T) {
	session, _ := newTestSession(t, nil)

	_, err := session.HandleLine("reboot")
	require.NoError(t, err)

	lines, err := session.HandleLine("reboot")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "ERR schedule cooldown-active ready=+2220ms", lines[0])
}

func TestSessionRendersRecoverySteps(t *testing.T) {
	session, _ := newTestSession(t, nil)

	lines, err := session.HandleLine("recovery now")
	require.NoError(t, err)
	require.Len(t, lines, 8, "summary, sequence line, and six steps")
	assert.True(t, strings.HasPrefix(lines[0], "OK recovery now queued seq=1"))
	assert.Contains(t, lines[6], "mode=bridge-activity")
}

func TestSessionRejectsOutOfRangeRetries(t *testing.T) {
	session, _ := newTestSession(t, nil)

	lines, err := session.HandleLine("fault recover retries=5")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "ERR unsupported fault retries must be 1-3 (pending implementation)", lines[0])
}

func TestSessionReportsSyntaxErrors(t *testing.T) {
	session, _ := newTestSession(t, nil)

	lines, err := session.HandleLine("reboot later")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "ERR syntax "))
}

func TestSessionHelpListsCommands(t *testing.T) {
	session, _ := newTestSession(t, nil)

	lines, err := session.HandleLine("help")
	require.NoError(t, err)
	require.Len(t, lines, len(HelpTopics)+2)
	assert.Equal(t, "Available commands:", lines[0])
	assert.Equal(t, "Type `help <topic>` for a specific command.", lines[len(lines)-1])
}

func TestSessionHelpTopic(t *testing.T) {
	session, _ := newTestSession(t, nil)

	lines, err := session.HandleLine("help reboot")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "reboot [now|delay <duration>]")

	lines, err = session.HandleLine("help bogus")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "No help available")
	assert.Contains(t, lines[1], "reboot, recovery, fault, status, help")
}

func TestSessionStatusWithoutProvider(t *testing.T) {
	session, _ := newTestSession(t, nil)

	lines, err := session.HandleLine("status")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Status unavailable: no orchestrator attached to this session.", lines[0])
}

func TestSessionStatusWithProvider(t *testing.T) {
	clock := orinctl.NewManualClock(0)
	driver := orinctl.NewRecordingStrapDriver(clock)
	monitor := orinctl.NewBridgeActivityMonitor()
	monitor.NotifyUSBConnect()
	driver.Set(orinctl.StrapRec, orinctl.LevelAsserted)

	session, _ := newTestSession(t, &SessionOptions{
		Status: MonitorStatus{Sampler: driver, Monitor: monitor},
	})

	lines, err := session.HandleLine("status")
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "REC*=asserted")
	assert.Contains(t, lines[len(lines)-1], "control-link: attached")
}

func TestSessionIgnoresEmptyLines(t *testing.T) {
	session, _ := newTestSession(t, nil)
	lines, err := session.HandleLine("   ")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSessionDistinctKindsQueueIndependently(t *testing.T) {
	session, _ := newTestSession(t, nil)

	for i, line := range []string{"reboot", "recovery enter", "fault recover"} {
		lines, err := session.HandleLine(line)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(lines[0], "OK "), "command %d: %s", i, lines[0])
	}
}
