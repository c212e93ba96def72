package orinctl

import "time"

// Timing constants for the NormalReboot sequence. The windows mimic a
// front-panel power button press followed by a reset pulse once the rails
// have settled.
const (
	// PowerPress is how long the power strap stays asserted.
	PowerPress = 200 * time.Millisecond
	// PowerPressMin bounds the shortest acceptable press.
	PowerPressMin = 180 * time.Millisecond
	// PowerPressMax bounds the longest acceptable press.
	PowerPressMax = 220 * time.Millisecond
	// PowerReleaseSettle is the idle hold after releasing the power strap.
	PowerReleaseSettle = 1000 * time.Millisecond
	// PowerReleaseSettleMin bounds the shortest settle window.
	PowerReleaseSettleMin = 900 * time.Millisecond
	// PowerReleaseSettleMax bounds the longest settle window.
	PowerReleaseSettleMax = 1100 * time.Millisecond
	// ResetPulseMin is the minimum reset assertion.
	ResetPulseMin = 20 * time.Millisecond
	// NormalRebootCooldown is enforced after the sequence finishes.
	NormalRebootCooldown = 1000 * time.Millisecond
)

// Timing constants for the recovery sequences.
const (
	// RecoveryPreResetHold is the minimum REC assertion before reset toggles.
	RecoveryPreResetHold = 100 * time.Millisecond
	// RecoveryPostResetHold is the minimum REC assertion after reset releases.
	RecoveryPostResetHold = 500 * time.Millisecond
	// RecoveryResetPulseMin is the minimum reset assertion during recovery.
	RecoveryResetPulseMin = 20 * time.Millisecond
	// RecoveryCooldown is enforced after a recovery sequence finishes.
	RecoveryCooldown = 1000 * time.Millisecond
)

// Timing constants for the fault recovery sequence.
const (
	// APOPrecharge is the exact APO assertion guaranteeing a hard power cut.
	APOPrecharge = 250 * time.Millisecond
	// FaultRecoveryCooldown matches the normal reboot cooldown.
	FaultRecoveryCooldown = NormalRebootCooldown
	// FaultRecoveryMaxRetries caps the brown-out retry budget for fault
	// recovery runs and bounds the `fault recover retries=` override.
	FaultRecoveryMaxRetries = 3
)

// normalRebootSteps implements the power press / settle / reset pulse
// workflow.
var normalRebootSteps = []StrapStep{
	{Line: StrapPwr, Action: ActionAssertLow, HoldFor: PowerPress, Constraints: HoldRange(PowerPressMin, PowerPressMax), Completion: AfterDuration()},
	{Line: StrapPwr, Action: ActionReleaseHigh, HoldFor: PowerReleaseSettle, Constraints: HoldRange(PowerReleaseSettleMin, PowerReleaseSettleMax), Completion: AfterDuration()},
	{Line: StrapReset, Action: ActionAssertLow, HoldFor: ResetPulseMin, Constraints: MinHoldOnly(ResetPulseMin), Completion: AfterDuration()},
	{Line: StrapReset, Action: ActionReleaseHigh, HoldFor: 0, Completion: AfterDuration()},
}

// Shared recovery building blocks. REC stays asserted across the reset
// pulse so the Jetson samples the strap on its way out of reset.
var (
	recAssertPreStep = StrapStep{Line: StrapRec, Action: ActionAssertLow, HoldFor: RecoveryPreResetHold, Constraints: MinHoldOnly(RecoveryPreResetHold), Completion: AfterDuration()}
	resetAssertStep  = StrapStep{Line: StrapReset, Action: ActionAssertLow, HoldFor: RecoveryResetPulseMin, Constraints: MinHoldOnly(RecoveryResetPulseMin), Completion: AfterDuration()}
	resetReleaseStep = StrapStep{Line: StrapReset, Action: ActionReleaseHigh, HoldFor: 0, Completion: AfterDuration()}
	recPostHoldStep  = StrapStep{Line: StrapRec, Action: ActionAssertLow, HoldFor: RecoveryPostResetHold, Constraints: MinHoldOnly(RecoveryPostResetHold), Completion: AfterDuration()}
	recReleaseStep   = StrapStep{Line: StrapRec, Action: ActionReleaseHigh, HoldFor: 0, Completion: AfterDuration()}
	recWaitStep      = StrapStep{Line: StrapRec, Action: ActionAssertLow, HoldFor: 0, Completion: OnBridgeActivity()}
)

var recoveryEntrySteps = []StrapStep{
	recAssertPreStep,
	resetAssertStep,
	resetReleaseStep,
	recPostHoldStep,
	recReleaseStep,
}

var recoveryImmediateSteps = []StrapStep{
	recAssertPreStep,
	resetAssertStep,
	resetReleaseStep,
	recPostHoldStep,
	recWaitStep,
	recReleaseStep,
}

// faultRecoverySteps asserts APO long enough for a guaranteed power cut,
// then replays the normal reboot workflow.
var faultRecoverySteps = append([]StrapStep{
	{Line: StrapApo, Action: ActionAssertLow, HoldFor: APOPrecharge, Constraints: HoldRange(APOPrecharge, APOPrecharge), Completion: AfterDuration()},
	{Line: StrapApo, Action: ActionReleaseHigh, HoldFor: 0, Completion: AfterDuration()},
}, normalRebootSteps...)

// NormalRebootTemplate returns the shared normal reboot template.
func NormalRebootTemplate() SequenceTemplate {
	return SequenceTemplate{Kind: NormalReboot, Steps: normalRebootSteps, Cooldown: NormalRebootCooldown}
}

// RecoveryEntryTemplate returns the template backing `recovery enter`.
func RecoveryEntryTemplate() SequenceTemplate {
	return SequenceTemplate{Kind: RecoveryEntry, Steps: recoveryEntrySteps, Cooldown: RecoveryCooldown}
}

// RecoveryImmediateTemplate returns the template backing `recovery now`.
// REC stays low until Jetson console activity appears on the bridge.
func RecoveryImmediateTemplate() SequenceTemplate {
	return SequenceTemplate{Kind: RecoveryImmediate, Steps: recoveryImmediateSteps, Cooldown: RecoveryCooldown}
}

// FaultRecoveryTemplate returns the template backing `fault recover`.
func FaultRecoveryTemplate() SequenceTemplate {
	return SequenceTemplate{Kind: FaultRecovery, Steps: faultRecoverySteps, Cooldown: FaultRecoveryCooldown, MaxRetries: FaultRecoveryMaxRetries}
}

// Templates returns every catalog template in registration order.
func Templates() []SequenceTemplate {
	return []SequenceTemplate{
		NormalRebootTemplate(),
		RecoveryEntryTemplate(),
		RecoveryImmediateTemplate(),
		FaultRecoveryTemplate(),
	}
}
