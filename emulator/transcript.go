package emulator

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// TranscriptRole labels who produced a transcript line.
type TranscriptRole int

const (
	RoleHost TranscriptRole = iota
	RoleEmulator
)

func (r TranscriptRole) prefix() string {
	if r == RoleHost {
		return "HOST>"
	}
	return "EMU <"
}

// Transcript appends a timestamped exchange log to a file. Timestamps are
// milliseconds since session start.
type Transcript struct {
	file      *os.File
	writer    *bufio.Writer
	sessionID uuid.UUID
}

// NewTranscript creates (or truncates) the transcript at path and writes
// the header.
func NewTranscript(path string) (*Transcript, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	t := &Transcript{
		file:      file,
		writer:    bufio.NewWriter(file),
		sessionID: uuid.New(),
	}
	if err := t.writeHeader(); err != nil {
		file.Close()
		return nil, err
	}
	return t, nil
}

// SessionID returns the transcript's session identifier.
func (t *Transcript) SessionID() uuid.UUID {
	return t.sessionID
}

func (t *Transcript) writeHeader() error {
	fmt.Fprintln(t.writer, "# Orin Controller Emulator transcript")
	fmt.Fprintf(t.writer, "# session: %s\n", t.sessionID)
	fmt.Fprintln(t.writer, "# Timestamps are milliseconds since session start")
	fmt.Fprintln(t.writer)
	return t.writer.Flush()
}

// AppendLine writes one exchange line and flushes.
func (t *Transcript) AppendLine(elapsed time.Duration, role TranscriptRole, line string) error {
	if _, err := fmt.Fprintf(t.writer, "[+%6d ms] %s %s\n", elapsed.Milliseconds(), role.prefix(), line); err != nil {
		return err
	}
	return t.writer.Flush()
}

// Close flushes and closes the underlying file.
func (t *Transcript) Close() error {
	if err := t.writer.Flush(); err != nil {
		t.file.Close()
		return err
	}
	return t.file.Close()
}
