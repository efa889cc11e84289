// Package route models the fixed commute route: an ordered sequence of
// waypoints with a fixed inter-waypoint travel time, evaluated in one of
// two run modes (morning toward work, evening back home).
package route

import (
	"errors"
	"fmt"
	"time"
)

// Route errors.
var (
	ErrNoWaypoints     = errors.New("route has no waypoints")
	ErrHalfOpenWindArc = errors.New("wind arc requires both min and max")
	ErrInvalidRunMode  = errors.New("invalid run mode")
)

// RunMode identifies which leg of the commute is being evaluated. The mode
// carries the tie-break polarity: a morning rider wants the latest safe
// departure before a fixed arrival deadline, an evening rider the earliest
// safe departure after the day ends.
type RunMode int

const (
	// Morning is the outbound leg, anchored to a latest-departure deadline.
	Morning RunMode = iota
	// Evening is the return leg, anchored to a first-possible departure.
	Evening
)

// String returns the mode name.
func (m RunMode) String() string {
	switch m {
	case Morning:
		return "morning"
	case Evening:
		return "evening"
	default:
		return fmt.Sprintf("runmode(%d)", int(m))
	}
}

// Valid reports whether the mode is a known run mode.
func (m RunMode) Valid() bool {
	return m == Morning || m == Evening
}

// PrefersLater reports the tie-break polarity: true when, among practically
// equivalent candidates, the later departure should win.
func (m RunMode) PrefersLater() bool {
	return m == Morning
}

// ParseRunMode parses "morning" or "evening".
func ParseRunMode(s string) (RunMode, error) {
	switch s {
	case "morning":
		return Morning, nil
	case "evening":
		return Evening, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRunMode, s)
	}
}

// WindArc is an inclusive range of acceptable wind directions in degrees.
// A nil arc on a waypoint means no directional constraint.
type WindArc struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether a wind direction falls inside the arc.
func (a *WindArc) Contains(direction float64) bool {
	if a == nil {
		return true
	}
	return a.Min <= direction && direction <= a.Max
}

// Waypoint is a named point along the route. The acceptable wind arc is
// optional; crosswinds from inside the arc are tolerated at higher speeds.
type Waypoint struct {
	Name string   `json:"name"`
	Lat  float64  `json:"lat"`
	Lon  float64  `json:"lon"`
	Arc  *WindArc `json:"windArc,omitempty"`
}

// Route is an ordered waypoint sequence for one run mode. Waypoint order is
// fixed per mode; the evening route traverses the same points in reverse
// with its own wind arcs.
type Route struct {
	Mode        RunMode
	Waypoints   []Waypoint
	LegDuration time.Duration
}

// Validate checks the route invariants.
func (r Route) Validate() error {
	if !r.Mode.Valid() {
		return ErrInvalidRunMode
	}
	if len(r.Waypoints) == 0 {
		return ErrNoWaypoints
	}
	if r.LegDuration <= 0 {
		return fmt.Errorf("leg duration must be positive, got %s", r.LegDuration)
	}
	for _, wp := range r.Waypoints {
		if wp.Name == "" {
			return errors.New("waypoint name is required")
		}
		if wp.Lat < -90 || wp.Lat > 90 {
			return fmt.Errorf("waypoint %s: latitude out of range", wp.Name)
		}
		if wp.Lon < -180 || wp.Lon > 180 {
			return fmt.Errorf("waypoint %s: longitude out of range", wp.Name)
		}
	}
	return nil
}

// ArrivalTimes projects a departure time onto per-waypoint arrival times:
// the rider reaches waypoint i at departure + i*LegDuration.
func (r Route) ArrivalTimes(departure time.Time) []time.Time {
	arrivals := make([]time.Time, len(r.Waypoints))
	for i := range r.Waypoints {
		arrivals[i] = departure.Add(time.Duration(i) * r.LegDuration)
	}
	return arrivals
}

// TripDuration is the total travel time across all legs.
func (r Route) TripDuration() time.Duration {
	if len(r.Waypoints) == 0 {
		return 0
	}
	return time.Duration(len(r.Waypoints)-1) * r.LegDuration
}
