package orinctl

import "fmt"

// StrapID identifies one of the logical strap lines exposed by the
// controller.
type StrapID int

// Strap lines in telemetry index order.
const (
	StrapReset StrapID = iota
	StrapRec
	StrapPwr
	StrapApo

	strapCount = 4
)

// Index returns the deterministic index used for lookups and telemetry
// encoding.
func (s StrapID) Index() int {
	return int(s)
}

// StrapFromIndex constructs a StrapID from a raw index.
func StrapFromIndex(index int) (StrapID, bool) {
	if index < 0 || index >= strapCount {
		return 0, false
	}
	return StrapID(index), true
}

func (s StrapID) String() string {
	switch s {
	case StrapReset:
		return "RESET*"
	case StrapRec:
		return "REC*"
	case StrapPwr:
		return "PWR*"
	case StrapApo:
		return "APO"
	default:
		return fmt.Sprintf("strap(%d)", int(s))
	}
}

// StrapPolarity describes how a line is wired through the open-drain
// driver.
type StrapPolarity int

const (
	ActiveLow StrapPolarity = iota
	ActiveHigh
)

// Level is the logical drive level requested from the strap driver.
type Level int

const (
	// LevelReleased lets the open-drain output float to its idle state.
	LevelReleased Level = iota
	// LevelAsserted drives the line to its asserted electrical state
	// (low, for the active-low Jetson straps).
	LevelAsserted
)

func (l Level) String() string {
	if l == LevelAsserted {
		return "asserted"
	}
	return "released"
}

// StrapAction is the operation a sequence step applies to a line.
type StrapAction int

const (
	ActionAssertLow StrapAction = iota
	ActionReleaseHigh
)

// Level maps the action onto the driver level it requests.
func (a StrapAction) Level() Level {
	if a == ActionAssertLow {
		return LevelAsserted
	}
	return LevelReleased
}

func (a StrapAction) String() string {
	if a == ActionAssertLow {
		return "assert-low"
	}
	return "release-high"
}

// StrapLine carries the immutable routing metadata for one strap.
type StrapLine struct {
	ID           StrapID
	Name         string
	MCUPin       string
	DriverOutput string
	J14Pin       int
	Polarity     StrapPolarity
	IdleLevel    Level
}

// AllStraps is the compile-time catalog of every strap line as routed on
// the controller board.
var AllStraps = [strapCount]StrapLine{
	{ID: StrapReset, Name: "RESET*", MCUPin: "PA4", DriverOutput: "SN74LVC07-2Y", J14Pin: 8, Polarity: ActiveLow, IdleLevel: LevelReleased},
	{ID: StrapRec, Name: "REC*", MCUPin: "PA3", DriverOutput: "SN74LVC07-1Y", J14Pin: 10, Polarity: ActiveLow, IdleLevel: LevelReleased},
	{ID: StrapPwr, Name: "PWR*", MCUPin: "PA2", DriverOutput: "SN74LVC07-2Y", J14Pin: 12, Polarity: ActiveLow, IdleLevel: LevelReleased},
	{ID: StrapApo, Name: "APO", MCUPin: "PA5", DriverOutput: "SN74LVC07-1Y", J14Pin: 5, Polarity: ActiveLow, IdleLevel: LevelReleased},
}

// StrapByID returns the routing metadata for the given line.
func StrapByID(id StrapID) StrapLine {
	return AllStraps[id.Index()]
}

// StrapDriver is the capability interface through which the orchestrator
// requests strap transitions. A single driver instance holds exclusive
// write access to the lines; nothing else in the system toggles straps.
type StrapDriver interface {
	// Set drives the line to the requested level. The call is
	// synchronous: the level is on the wire when it returns.
	Set(line StrapID, level Level)
}

// StrapSampler is an optional driver extension used for status reporting.
type StrapSampler interface {
	Sample(line StrapID) Level
}
