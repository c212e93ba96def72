package repl

import (
	"fmt"
	"strings"
	"time"

	orinctl "github.com/NathanHowell/orinctl"
)

// StrapSample is the sampled state of a single strap line.
type StrapSample struct {
	ID    orinctl.StrapID
	Level orinctl.Level
}

// BridgeSnapshot summarizes recent bridge traffic for status display.
type BridgeSnapshot struct {
	// WaitingForActivity is set while a recovery run holds REC for
	// console traffic.
	WaitingForActivity bool
	// UsbToJetsonIdle is how long since traffic was forwarded toward the
	// Jetson; HasUsbIdle is false when none was ever seen.
	UsbToJetsonIdle time.Duration
	HasUsbIdle      bool
	// JetsonToUsbIdle is how long since the Jetson last produced output.
	JetsonToUsbIdle time.Duration
	HasJetsonIdle   bool
}

// StatusSnapshot is the reusable status block surfaced by the `status`
// command.
type StatusSnapshot struct {
	Straps              [4]StrapSample
	VddMillivolts       uint16
	HasVdd              bool
	Bridge              BridgeSnapshot
	ControlLinkAttached bool
}

// UnknownStatus builds a snapshot with no live measurements.
func UnknownStatus() StatusSnapshot {
	var snap StatusSnapshot
	for i := range snap.Straps {
		id, _ := orinctl.StrapFromIndex(i)
		snap.Straps[i] = StrapSample{ID: id, Level: orinctl.LevelReleased}
	}
	return snap
}

// StatusProvider is the platform hook that supplies live status. The
// firmware and the emulator implement it; the core only defines the
// shape.
type StatusProvider interface {
	Snapshot(now orinctl.Instant) (StatusSnapshot, bool)
}

// FormatStatus renders a snapshot as console lines, keeping the textual
// layout consistent across front-ends.
func FormatStatus(snap StatusSnapshot) []string {
	lines := make([]string, 0, 8)

	var straps strings.Builder
	straps.WriteString("straps:")
	for _, sample := range snap.Straps {
		fmt.Fprintf(&straps, " %s=%s", orinctl.StrapByID(sample.ID).Name, sample.Level)
	}
	lines = append(lines, straps.String())

	if snap.HasVdd {
		lines = append(lines, fmt.Sprintf("vdd: %dmV", snap.VddMillivolts))
	} else {
		lines = append(lines, "vdd: unknown")
	}

	bridge := "bridge: idle"
	if snap.Bridge.WaitingForActivity {
		bridge = "bridge: waiting-for-activity"
	}
	if snap.Bridge.HasJetsonIdle {
		bridge += fmt.Sprintf(" jetson-idle=%s", formatIdle(snap.Bridge.JetsonToUsbIdle))
	}
	if snap.Bridge.HasUsbIdle {
		bridge += fmt.Sprintf(" usb-idle=%s", formatIdle(snap.Bridge.UsbToJetsonIdle))
	}
	lines = append(lines, bridge)

	link := "control-link: detached"
	if snap.ControlLinkAttached {
		link = "control-link: attached"
	}
	lines = append(lines, link)

	return lines
}

func formatIdle(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
