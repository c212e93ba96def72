package orinctl

import (
	"sync"
	"time"
)

// ManualClock is a deterministic Clock for tests. Time only moves when the
// test advances it.
type ManualClock struct {
	mu      sync.Mutex
	now     Instant
	waiters []manualWaiter
}

type manualWaiter struct {
	at Instant
	ch chan time.Time
}

// NewManualClock creates a clock positioned at start.
func NewManualClock(start Instant) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current synthetic instant.
func (c *ManualClock) Now() Instant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After returns a channel that fires once the clock has been advanced to
// now+d.
func (c *ManualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	at := c.now.Add(d)
	if at <= c.now {
		ch <- time.Time{}
		return ch
	}
	c.waiters = append(c.waiters, manualWaiter{at: at, ch: ch})
	return ch
}

// Advance moves the clock forward and fires any due timers.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if w.at <= c.now {
			w.ch <- time.Time{}
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
}

// Set jumps the clock to an absolute instant, firing due timers. An instant
// earlier than the current one leaves the clock unchanged.
func (c *ManualClock) Set(now Instant) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now > c.now {
		c.now = now
	}
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if w.at <= c.now {
			w.ch <- time.Time{}
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
}

var _ Clock = (*ManualClock)(nil)

// StrapTransition is one recorded driver call.
type StrapTransition struct {
	At    Instant
	Line  StrapID
	Level Level
}

// RecordingStrapDriver captures strap transitions with timestamps so tests
// can assert on exact sequencing. It also answers Sample with the last
// driven level.
type RecordingStrapDriver struct {
	mu          sync.Mutex
	clock       Clock
	transitions []StrapTransition
	levels      [strapCount]Level
}

// NewRecordingStrapDriver creates a driver that timestamps transitions
// from the given clock. All lines start released.
func NewRecordingStrapDriver(clock Clock) *RecordingStrapDriver {
	return &RecordingStrapDriver{clock: clock}
}

// Set implements StrapDriver.
func (d *RecordingStrapDriver) Set(line StrapID, level Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.transitions = append(d.transitions, StrapTransition{At: d.clock.Now(), Line: line, Level: level})
	d.levels[line.Index()] = level
}

// Sample implements StrapSampler.
func (d *RecordingStrapDriver) Sample(line StrapID) Level {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.levels[line.Index()]
}

// Transitions returns a copy of the recorded transitions.
func (d *RecordingStrapDriver) Transitions() []StrapTransition {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]StrapTransition, len(d.transitions))
	copy(out, d.transitions)
	return out
}

// Reset clears the recorded transitions.
func (d *RecordingStrapDriver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.transitions = nil
}

var (
	_ StrapDriver  = (*RecordingStrapDriver)(nil)
	_ StrapSampler = (*RecordingStrapDriver)(nil)
)

// ScriptedPowerMonitor replays a scripted series of power observations.
// Once the script is exhausted it keeps returning the final status.
type ScriptedPowerMonitor struct {
	mu             sync.Mutex
	script         []PowerStatus
	index          int
	sampleInterval time.Duration
	stableHoldoff  time.Duration
}

// NewScriptedPowerMonitor creates a monitor with the default timing knobs.
func NewScriptedPowerMonitor(script ...PowerStatus) *ScriptedPowerMonitor {
	return &ScriptedPowerMonitor{
		script:         script,
		sampleInterval: NoopPowerMonitor{}.SampleInterval(),
		stableHoldoff:  NoopPowerMonitor{}.StableHoldoff(),
	}
}

// Push appends further observations to the script.
func (m *ScriptedPowerMonitor) Push(status ...PowerStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, status...)
}

// Poll implements PowerMonitor.
func (m *ScriptedPowerMonitor) Poll() PowerStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.script) == 0 {
		return PowerStatus{State: PowerUnknown}
	}
	status := m.script[m.index]
	if m.index < len(m.script)-1 {
		m.index++
	}
	return status
}

// SampleInterval implements PowerMonitor.
func (m *ScriptedPowerMonitor) SampleInterval() time.Duration {
	return m.sampleInterval
}

// StableHoldoff implements PowerMonitor.
func (m *ScriptedPowerMonitor) StableHoldoff() time.Duration {
	return m.stableHoldoff
}

var _ PowerMonitor = (*ScriptedPowerMonitor)(nil)
