package orinctl

import "sync"

// BridgeDirection identifies which way bridge traffic flowed.
type BridgeDirection int

const (
	// UsbToJetson covers bytes forwarded from the USB CDC bridge port
	// toward the Jetson UART.
	UsbToJetson BridgeDirection = iota
	// JetsonToUsb covers bytes received from the Jetson UART and
	// forwarded to the USB host.
	JetsonToUsb
)

func (d BridgeDirection) String() string {
	if d == UsbToJetson {
		return "usb-to-jetson"
	}
	return "jetson-to-usb"
}

// BridgeActivityEvent describes one observation made by a bridge task.
type BridgeActivityEvent struct {
	Direction BridgeDirection
	Timestamp Instant
	Bytes     int
}

// BridgeActivityUpdate is the result of processing a non-empty activity
// event.
type BridgeActivityUpdate struct {
	Event BridgeActivityEvent
	// TelemetryEvent is the id of the RecoveryConsoleActivity record
	// emitted for Jetson→USB traffic; HasTelemetry is false for
	// USB→Jetson traffic.
	TelemetryEvent EventID
	HasTelemetry   bool
	// ReleaseRecovery signals that the REC strap may be released because
	// console activity arrived while a recovery wait was pending.
	ReleaseRecovery bool
}

// BridgeDisconnectNotice is the snapshot emitted when the USB control link
// detaches.
type BridgeDisconnectNotice struct {
	Timestamp              Instant
	RecoveryReleasePending bool
}

// BridgeActivityMonitor tracks UART/USB bridge traffic, resolves recovery
// waits on inbound Jetson traffic, and surfaces idle timestamps for status
// reporting.
type BridgeActivityMonitor struct {
	mu sync.Mutex

	pendingRecoveryRelease bool
	linkAttached           bool

	lastTx    Instant
	hasLastTx bool
	lastRx    Instant
	hasLastRx bool
}

// NewBridgeActivityMonitor creates a monitor with no observed activity.
func NewBridgeActivityMonitor() *BridgeActivityMonitor {
	return &BridgeActivityMonitor{}
}

// IsPending reports whether a recovery sequence is waiting on bridge
// activity.
func (m *BridgeActivityMonitor) IsPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingRecoveryRelease
}

// SetPending marks the monitor as waiting (or not) for activity before
// releasing REC.
func (m *BridgeActivityMonitor) SetPending(pending bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingRecoveryRelease = pending
}

// LastTx returns the timestamp of the last USB→Jetson frame forwarded.
func (m *BridgeActivityMonitor) LastTx() (Instant, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTx, m.hasLastTx
}

// LastRx returns the timestamp of the last Jetson→USB frame observed.
func (m *BridgeActivityMonitor) LastRx() (Instant, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRx, m.hasLastRx
}

// ProcessEvent folds one activity observation into the monitor. Zero-byte
// events are dropped without touching any state. Jetson→USB traffic emits
// a RecoveryConsoleActivity telemetry record and, when a recovery wait was
// pending, clears it and requests the REC release.
func (m *BridgeActivityMonitor) ProcessEvent(event BridgeActivityEvent, telemetry *TelemetryRecorder) (BridgeActivityUpdate, bool) {
	if event.Bytes == 0 {
		return BridgeActivityUpdate{}, false
	}

	m.mu.Lock()
	release := false
	switch event.Direction {
	case UsbToJetson:
		m.lastTx = event.Timestamp
		m.hasLastTx = true
	case JetsonToUsb:
		m.lastRx = event.Timestamp
		m.hasLastRx = true
		if m.pendingRecoveryRelease {
			m.pendingRecoveryRelease = false
			release = true
		}
	}
	m.mu.Unlock()

	update := BridgeActivityUpdate{Event: event, ReleaseRecovery: release}
	if event.Direction == JetsonToUsb {
		update.TelemetryEvent = telemetry.Record(EventRecoveryConsole, nil, event.Timestamp)
		update.HasTelemetry = true
	}
	return update, true
}

// NotifyUSBConnect marks the USB control link as attached.
func (m *BridgeActivityMonitor) NotifyUSBConnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linkAttached = true
}

// NotifyUSBDisconnect marks the control link as detached. The returned
// notice reports whether a recovery release was still pending; the flag is
// cleared as part of the detach. Returns false when the link was not
// attached.
func (m *BridgeActivityMonitor) NotifyUSBDisconnect(timestamp Instant) (BridgeDisconnectNotice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.linkAttached {
		return BridgeDisconnectNotice{}, false
	}
	m.linkAttached = false
	pending := m.pendingRecoveryRelease
	m.pendingRecoveryRelease = false

	return BridgeDisconnectNotice{Timestamp: timestamp, RecoveryReleasePending: pending}, true
}

// LinkAttached reports whether the USB control link is currently attached.
func (m *BridgeActivityMonitor) LinkAttached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.linkAttached
}
