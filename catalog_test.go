package orinctl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStrapLookupReturnsExpectedMetadata(t *testing.T) {
	reset := StrapByID(StrapReset)
	assert.Equal(t, "RESET*", reset.Name)
	assert.Equal(t, "PA4", reset.MCUPin)
	assert.Equal(t, "SN74LVC07-2Y", reset.DriverOutput)
	assert.Equal(t, 8, reset.J14Pin)
	assert.Equal(t, ActiveLow, reset.Polarity)
}

func TestTimingConstraintsAllowExpectedRanges(t *testing.T) {
	c := HoldRange(100*time.Millisecond, 250*time.Millisecond)
	assert.True(t, c.AllowsHold(150*time.Millisecond))
	assert.False(t, c.AllowsHold(50*time.Millisecond))
	assert.False(t, c.AllowsHold(300*time.Millisecond))

	unbounded := TimingConstraints{}
	assert.True(t, unbounded.AllowsHold(0))
	assert.True(t, unbounded.AllowsHold(time.Hour))
}

func TestNormalRebootMatchesTimingWindows(t *testing.T) {
	template := NormalRebootTemplate()
	assert.Equal(t, NormalReboot, template.Kind)
	assert.Equal(t, 4, template.StepCount())

	press := template.Steps[0]
	assert.Equal(t, StrapPwr, press.Line)
	assert.Equal(t, ActionAssertLow, press.Action)
	assert.Equal(t, PowerPress, press.HoldFor)
	assert.Equal(t, PowerPressMin, press.Constraints.MinHold)
	assert.Equal(t, PowerPressMax, press.Constraints.MaxHold)
	assert.True(t, press.Constraints.AllowsHold(press.HoldFor))

	settle := template.Steps[1]
	assert.Equal(t, StrapPwr, settle.Line)
	assert.Equal(t, ActionReleaseHigh, settle.Action)
	assert.Equal(t, PowerReleaseSettle, settle.HoldFor)
	assert.Equal(t, PowerReleaseSettleMin, settle.Constraints.MinHold)
	assert.Equal(t, PowerReleaseSettleMax, settle.Constraints.MaxHold)

	resetPulse := template.Steps[2]
	assert.Equal(t, StrapReset, resetPulse.Line)
	assert.Equal(t, ActionAssertLow, resetPulse.Action)
	assert.Equal(t, ResetPulseMin, resetPulse.HoldFor)
	assert.Equal(t, ResetPulseMin, resetPulse.Constraints.MinHold)
	assert.Zero(t, resetPulse.Constraints.MaxHold)

	release := template.Steps[3]
	assert.Equal(t, StrapReset, release.Line)
	assert.Equal(t, ActionReleaseHigh, release.Action)
	assert.Zero(t, release.HoldFor)

	assert.Equal(t, NormalRebootCooldown, template.Cooldown)
	assert.Zero(t, template.MaxRetries)
	assert.Equal(t, 1220*time.Millisecond, template.RunDuration())
}

func TestRecoveryEntryEnforcesRecWindows(t *testing.T) {
	template := RecoveryEntryTemplate()
	assert.Equal(t, RecoveryEntry, template.Kind)
	assert.Equal(t, 5, template.StepCount())

	preHold := template.Steps[0]
	assert.Equal(t, StrapRec, preHold.Line)
	assert.Equal(t, ActionAssertLow, preHold.Action)
	assert.Equal(t, RecoveryPreResetHold, preHold.HoldFor)
	assert.Equal(t, RecoveryPreResetHold, preHold.Constraints.MinHold)

	postHold := template.Steps[3]
	assert.Equal(t, StrapRec, postHold.Line)
	assert.Equal(t, RecoveryPostResetHold, postHold.HoldFor)

	release := template.Steps[4]
	assert.Equal(t, StrapRec, release.Line)
	assert.Equal(t, ActionReleaseHigh, release.Action)
	assert.Equal(t, CompleteAfterDuration, release.Completion.Mode)
}

func TestRecoveryImmediateWaitsForBridgeActivity(t *testing.T) {
	template := RecoveryImmediateTemplate()
	assert.Equal(t, RecoveryImmediate, template.Kind)
	assert.Equal(t, 6, template.StepCount())

	wait := template.Steps[4]
	assert.Equal(t, StrapRec, wait.Line)
	assert.Equal(t, ActionAssertLow, wait.Action)
	assert.Equal(t, CompleteOnBridgeActivity, wait.Completion.Mode)
	assert.Zero(t, wait.HoldFor, "bridge wait holds until activity")

	release := template.Steps[5]
	assert.Equal(t, StrapRec, release.Line)
	assert.Equal(t, ActionReleaseHigh, release.Action)
	assert.Equal(t, CompleteAfterDuration, release.Completion.Mode)
}

func TestFaultRecoveryPrependsAPOHold(t *testing.T) {
	template := FaultRecoveryTemplate()
	assert.Equal(t, FaultRecovery, template.Kind)
	assert.Equal(t, 6, template.StepCount())

	apoAssert := template.Steps[0]
	assert.Equal(t, StrapApo, apoAssert.Line)
	assert.Equal(t, ActionAssertLow, apoAssert.Action)
	assert.Equal(t, APOPrecharge, apoAssert.HoldFor)
	assert.Equal(t, APOPrecharge, apoAssert.Constraints.MinHold)
	assert.Equal(t, APOPrecharge, apoAssert.Constraints.MaxHold)

	apoRelease := template.Steps[1]
	assert.Equal(t, StrapApo, apoRelease.Line)
	assert.Equal(t, ActionReleaseHigh, apoRelease.Action)

	assert.Equal(t, NormalRebootTemplate().Steps, template.Steps[2:])
	assert.Equal(t, FaultRecoveryCooldown, template.Cooldown)
	assert.Equal(t, uint8(FaultRecoveryMaxRetries), template.MaxRetries)
}
