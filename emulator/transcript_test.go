package emulator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptWritesHeaderAndLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "session.log")

	transcript, err := NewTranscript(path)
	require.NoError(t, err)

	require.NoError(t, transcript.AppendLine(0, RoleHost, "reboot"))
	require.NoError(t, transcript.AppendLine(1500*time.Millisecond, RoleEmulator, "OK reboot queued"))
	require.NoError(t, transcript.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "# Orin Controller Emulator transcript")
	assert.Contains(t, text, "# session: "+transcript.SessionID().String())
	assert.Contains(t, text, "[+     0 ms] HOST> reboot")
	assert.Contains(t, text, "[+  1500 ms] EMU < OK reboot queued")
}

func TestTranscriptSessionIDsAreUnique(t *testing.T) {
	dir := t.TempDir()

	a, err := NewTranscript(filepath.Join(dir, "a.log"))
	require.NoError(t, err)
	b, err := NewTranscript(filepath.Join(dir, "b.log"))
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	assert.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestSessionWritesTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	transcript, err := NewTranscript(path)
	require.NoError(t, err)

	session, _ := newTestSession(t, &SessionOptions{Transcript: transcript})
	_, err = session.HandleLine("help reboot")
	require.NoError(t, err)
	require.NoError(t, transcript.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")

	var host, emu bool
	for _, line := range lines {
		if strings.Contains(line, "HOST> help reboot") {
			host = true
		}
		if strings.Contains(line, "EMU <") && strings.Contains(line, "reboot [now|delay") {
			emu = true
		}
	}
	assert.True(t, host, "host line missing: %q", string(data))
	assert.True(t, emu, "emulator line missing: %q", string(data))
}
