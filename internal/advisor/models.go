// Package advisor implements the departure-selection core: scoring one
// waypoint's weather into risk and discomfort, evaluating candidate
// departure slots across the route, picking the best slot per gear level,
// and combining a morning and an evening run into a round trip.
package advisor

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Advisor errors.
var (
	ErrInvalidGearLevel = errors.New("invalid gear level")
	ErrInvalidWindow    = errors.New("evaluation window end before start")
)

// GearLevel is a clothing/protection profile. It affects only the
// ideal-temperature baseline of the discomfort score: warmer gear keeps the
// rider comfortable at lower temperatures.
type GearLevel int

const (
	// GearLight is summer gear.
	GearLight GearLevel = 0
	// GearMedium is mid-season gear.
	GearMedium GearLevel = 1
	// GearHeavy is winter gear.
	GearHeavy GearLevel = 2

	// GearAll is a sentinel: evaluate every gear level and let the
	// selector pick.
	GearAll GearLevel = -1
)

// AllGearLevels lists the concrete gear levels in evaluation order.
func AllGearLevels() []GearLevel {
	return []GearLevel{GearLight, GearMedium, GearHeavy}
}

// Levels expands the sentinel: GearAll yields all three levels, a concrete
// level yields itself.
func (g GearLevel) Levels() []GearLevel {
	if g == GearAll {
		return AllGearLevels()
	}
	return []GearLevel{g}
}

// Valid reports whether g is a concrete gear level or the GearAll sentinel.
func (g GearLevel) Valid() bool {
	return g == GearAll || (g >= GearLight && g <= GearHeavy)
}

// IdealTemp returns the temperature (°C) at which the gear is most
// comfortable.
func (g GearLevel) IdealTemp() float64 {
	switch g {
	case GearMedium:
		return 14
	case GearHeavy:
		return 10
	default:
		return 22
	}
}

// Label returns the rider-facing gear description.
func (g GearLevel) Label() string {
	switch g {
	case GearLight:
		return "summer gear"
	case GearMedium:
		return "mid-season gear"
	case GearHeavy:
		return "winter gear"
	default:
		return fmt.Sprintf("gear(%d)", int(g))
	}
}

// Candidate is a hypothetical departure slot with its aggregate scores.
// Risk and discomfort are each the maximum across the route's waypoints:
// the route is only as rideable as its worst segment.
type Candidate struct {
	Departure  time.Time
	Risk       float64
	Discomfort float64

	// Refused is set when either aggregate exceeds the acceptance
	// threshold.
	Refused bool
}

// Score is the combined risk+discomfort value. Both terms are clamped to
// [0,1] independently, so the combined scale runs to 2; downstream
// tie-break arithmetic depends on these magnitudes, so it is deliberately
// not renormalized.
func (c Candidate) Score() float64 {
	return c.Risk + c.Discomfort
}

// Selection is the outcome of evaluating and selecting for one gear level.
type Selection struct {
	Gear       GearLevel
	Candidates []Candidate

	// Best is nil when every candidate was refused or the window was
	// empty: no viable departure for this gear.
	Best *Candidate
}

// RoundTrip pairs a morning and an evening best candidate for one gear
// level.
type RoundTrip struct {
	Gear            GearLevel
	Morning         Candidate
	Evening         Candidate
	TotalRisk       float64
	TotalDiscomfort float64

	// Refused is set when either leg's candidate is individually refused.
	Refused bool
}

// Score is the summed combined score of both legs.
func (rt RoundTrip) Score() float64 {
	return rt.TotalRisk + rt.TotalDiscomfort
}

// round3 rounds to three decimals, the precision at which two combined
// scores are considered numerically equal for ordering.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
