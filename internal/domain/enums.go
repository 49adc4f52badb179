// Package domain defines the core domain models for the simulation engine.
package domain

// Mode selects how a run's timeline is built.
type Mode string

const (
	// ModeAutoFuture populates the whole horizon in one batch at creation.
	ModeAutoFuture Mode = "auto_future"
	// ModeManualStep advances one simulated day per accepted step.
	ModeManualStep Mode = "manual_step"
)

// Valid reports whether the mode is one of the known values.
func (m Mode) Valid() bool {
	return m == ModeAutoFuture || m == ModeManualStep
}

// RunStatus represents the lifecycle state of a run. The transition is
// one-way: active -> ended.
type RunStatus string

const (
	RunStatusActive RunStatus = "active"
	RunStatusEnded  RunStatus = "ended"
)

// HorizonPreset selects how far an auto_future run projects.
type HorizonPreset string

const (
	HorizonOneWeek   HorizonPreset = "one_week"
	HorizonOneYear   HorizonPreset = "one_year"
	HorizonTenYears  HorizonPreset = "ten_years"
	HorizonWholeLife HorizonPreset = "whole_life"
)

// Valid reports whether the preset is one of the known values.
// The empty preset is valid and resolves to the ten-year default.
func (h HorizonPreset) Valid() bool {
	switch h {
	case "", HorizonOneWeek, HorizonOneYear, HorizonTenYears, HorizonWholeLife:
		return true
	}
	return false
}

// Schedule returns the simulated days covered by each node and the number
// of nodes an auto trajectory appends after seq 0.
func (h HorizonPreset) Schedule() (stepDays, steps int) {
	switch h {
	case HorizonOneWeek:
		return 1, 7
	case HorizonOneYear:
		return 7, 52
	case HorizonWholeLife:
		return 120, 180
	default: // ten_years
		return 30, 120
	}
}

// ActionType classifies what produced a timeline node.
type ActionType string

const (
	ActionTypeSystem           ActionType = "system"
	ActionTypeAutoProjection   ActionType = "auto_projection"
	ActionTypeManualPredefined ActionType = "manual_predefined"
	ActionTypeManualCustom     ActionType = "manual_custom"
)
