package emulator

import (
	orinctl "github.com/NathanHowell/orinctl"
	"github.com/NathanHowell/orinctl/repl"
)

// MonitorStatus implements repl.StatusProvider from a strap sampler and
// the bridge activity monitor.
type MonitorStatus struct {
	Sampler orinctl.StrapSampler
	Monitor *orinctl.BridgeActivityMonitor
}

// Snapshot implements repl.StatusProvider.
func (p MonitorStatus) Snapshot(now orinctl.Instant) (repl.StatusSnapshot, bool) {
	snap := repl.UnknownStatus()

	if p.Sampler != nil {
		for i := range snap.Straps {
			snap.Straps[i].Level = p.Sampler.Sample(snap.Straps[i].ID)
		}
	}

	if p.Monitor != nil {
		snap.Bridge.WaitingForActivity = p.Monitor.IsPending()
		if tx, ok := p.Monitor.LastTx(); ok {
			snap.Bridge.UsbToJetsonIdle = now.DurationSince(tx)
			snap.Bridge.HasUsbIdle = true
		}
		if rx, ok := p.Monitor.LastRx(); ok {
			snap.Bridge.JetsonToUsbIdle = now.DurationSince(rx)
			snap.Bridge.HasJetsonIdle = true
		}
		snap.ControlLinkAttached = p.Monitor.LinkAttached()
	}

	return snap, true
}

var _ repl.StatusProvider = MonitorStatus{}
