package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelWarn, &buf)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")
	logger.Error("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("low-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown") {
		t.Errorf("missing warn output: %q", out)
	}
	if !strings.Contains(out, "[ERROR] also shown") {
		t.Errorf("missing error output: %q", out)
	}
}

func TestKeyValueFormatting(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	logger.Info("sequence complete", "kind", "normal-reboot", "retries", 2)

	out := buf.String()
	if !strings.Contains(out, "sequence complete kind=normal-reboot retries=2") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestDanglingKeyIsPrinted(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	logger.Info("msg", "lonely")
	if !strings.Contains(buf.String(), "msg lonely") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
		"":        LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelError, &buf)
	logger.Info("dropped")
	logger.SetLevel(LevelDebug)
	logger.Debug("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Errorf("unexpected output: %q", out)
	}
}
