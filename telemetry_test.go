package orinctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventKindCodes(t *testing.T) {
	assert.Equal(t, EventKind(0x0000), StrapAssertedEvent(StrapReset))
	assert.Equal(t, EventKind(0x0003), StrapAssertedEvent(StrapApo))
	assert.Equal(t, EventKind(0x0004), StrapReleasedEvent(StrapReset))
	assert.Equal(t, EventKind(0x0006), StrapReleasedEvent(StrapPwr))
	assert.Equal(t, EventKind(0x0008), EventPowerStable)
	assert.Equal(t, EventKind(0x0009), EventRecoveryConsole)
	assert.Equal(t, EventKind(0x000A), EventUsbDisconnect)
	assert.Equal(t, EventKind(0x0010), CommandPendingEvent(NormalReboot))
	assert.Equal(t, EventKind(0x0013), CommandPendingEvent(FaultRecovery))
	assert.Equal(t, EventKind(0x0014), CommandStartedEvent(NormalReboot))
	assert.Equal(t, EventKind(0x0018), SequenceCompleteEvent(NormalReboot))
	assert.Equal(t, EventKind(0x001B), SequenceCompleteEvent(FaultRecovery))
}

func TestEventKindDecoding(t *testing.T) {
	line, action, ok := StrapReleasedEvent(StrapRec).StrapEvent()
	assert.True(t, ok)
	assert.Equal(t, StrapRec, line)
	assert.Equal(t, ActionReleaseHigh, action)

	kind, ok := SequenceCompleteEvent(RecoveryImmediate).SequenceEvent()
	assert.True(t, ok)
	assert.Equal(t, RecoveryImmediate, kind)

	_, _, ok = EventPowerStable.StrapEvent()
	assert.False(t, ok)
}

func TestEventKindCustomRangeRoundTrips(t *testing.T) {
	for _, code := range []EventKind{0x000B, 0x001C, 0x00FF, 0xBEEF} {
		assert.True(t, code.IsCustom(), "0x%04x", uint16(code))
	}
	assert.False(t, EventKind(0x0001).IsCustom())
	assert.False(t, EventPowerStable.IsCustom())
	assert.False(t, CommandStartedEvent(RecoveryEntry).IsCustom())
}

func TestFaultRecoveryReasonRoundTrip(t *testing.T) {
	fixtures := []struct {
		reason FaultRecoveryReason
		code   uint8
	}{
		{ReasonManualRequest, 0x00},
		{ReasonBrownOutDetected, 0x01},
		{ReasonControlLinkLost, 0x02},
		{ReasonConsoleWatchdogTimeout, 0x03},
		{FaultRecoveryReason(0xA5), 0xA5},
	}
	for _, f := range fixtures {
		assert.Equal(t, f.code, uint8(f.reason))
		if f.code >= 0x04 {
			assert.True(t, f.reason.IsCustom())
		} else {
			assert.False(t, f.reason.IsCustom())
		}
	}
}
