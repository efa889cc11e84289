package advisor

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/forecast"
	"github.com/ridecast/ridecast/internal/route"
)

// ClockTime is a wall-clock anchor such as "09:45".
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses an "HH:MM" anchor.
func ParseClockTime(s string) (ClockTime, error) {
	var ct ClockTime
	if _, err := fmt.Sscanf(s, "%d:%d", &ct.Hour, &ct.Minute); err != nil {
		return ClockTime{}, fmt.Errorf("parse clock time %q: %w", s, err)
	}
	if ct.Hour < 0 || ct.Hour > 23 || ct.Minute < 0 || ct.Minute > 59 {
		return ClockTime{}, fmt.Errorf("clock time %q out of range", s)
	}
	return ct, nil
}

// String renders the anchor as "HH:MM".
func (ct ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", ct.Hour, ct.Minute)
}

// On places the anchor on the given day, in that day's location.
func (ct ClockTime) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), ct.Hour, ct.Minute, 0, 0, day.Location())
}

// Window is a closed range of candidate departure timestamps aligned to
// the sampling grid. An empty window (End before Start) yields no slots.
type Window struct {
	Start time.Time
	End   time.Time
}

// Empty reports whether the window contains no slots.
func (w Window) Empty() bool {
	return w.End.Before(w.Start)
}

// Slots enumerates departure timestamps from Start to End inclusive, at
// the sampling interval.
func (w Window) Slots() []time.Time {
	var slots []time.Time
	for t := w.Start; !t.After(w.End); t = t.Add(forecast.SampleInterval) {
		slots = append(slots, t)
	}
	return slots
}

// BuildWindow constructs the evaluation window for a run mode. The morning
// window ends at the latest-departure anchor and opens at most `slack`
// before it; the evening window opens at the first-departure anchor and
// closes at most `slack` after it. Both are clipped so no slot lies in the
// past: now is rounded up to the sampling grid first. A window already
// entirely in the past comes back empty, not as an error.
func BuildWindow(mode route.RunMode, now time.Time, anchor ClockTime, slack time.Duration) (Window, error) {
	if !mode.Valid() {
		return Window{}, route.ErrInvalidRunMode
	}
	if slack < 0 {
		return Window{}, fmt.Errorf("%w: negative slack %s", ErrInvalidWindow, slack)
	}

	gridNow := ceilToGrid(now)
	anchored := anchor.On(now)

	var w Window
	switch mode {
	case route.Morning:
		w = Window{Start: anchored.Add(-slack), End: anchored}
	case route.Evening:
		w = Window{Start: anchored, End: anchored.Add(slack)}
	}

	if gridNow.After(w.Start) {
		w.Start = gridNow
	}
	return w, nil
}

// ceilToGrid rounds t up to the next sampling-grid point.
func ceilToGrid(t time.Time) time.Time {
	t = t.Truncate(time.Minute)
	step := int(forecast.SampleInterval / time.Minute)
	if rem := t.Minute() % step; rem != 0 {
		t = t.Add(time.Duration(step-rem) * time.Minute)
	}
	return t
}

// Evaluator turns a forecast table into scored departure candidates.
type Evaluator struct {
	scoring   ScoringConfig
	threshold float64
	logger    zerolog.Logger
}

// NewEvaluator creates an evaluator. threshold is the acceptance limit for
// both aggregate risk and aggregate discomfort.
func NewEvaluator(scoring ScoringConfig, threshold float64, logger zerolog.Logger) *Evaluator {
	return &Evaluator{scoring: scoring, threshold: threshold, logger: logger}
}

// Evaluate scores every departure slot in the window for one gear level.
// A slot whose projected arrival at any waypoint has no complete
// observation is dropped entirely — never interpolated or zero-filled.
func (e *Evaluator) Evaluate(table *forecast.Table, rt route.Route, w Window, gear GearLevel) []Candidate {
	var candidates []Candidate

slots:
	for _, departure := range w.Slots() {
		arrivals := rt.ArrivalTimes(departure)

		maxRisk, maxDiscomfort := 0.0, 0.0
		for i, wp := range rt.Waypoints {
			obs, ok := table.At(wp.Name, arrivals[i])
			if !ok || !obs.Complete() {
				e.logger.Debug().
					Str("waypoint", wp.Name).
					Time("arrival", arrivals[i]).
					Time("departure", departure).
					Msg("dropping slot: no complete observation")
				continue slots
			}

			risk := e.scoring.Risk(*obs.WindSpeed, *obs.Precipitation, *obs.Temperature,
				*obs.Code, *obs.WindDirection, wp)
			discomfort := e.scoring.Discomfort(*obs.Temperature, *obs.Precipitation,
				*obs.WindSpeed, gear)

			if risk > maxRisk {
				maxRisk = risk
			}
			if discomfort > maxDiscomfort {
				maxDiscomfort = discomfort
			}
		}

		candidates = append(candidates, Candidate{
			Departure:  departure,
			Risk:       maxRisk,
			Discomfort: maxDiscomfort,
			Refused:    maxRisk > e.threshold || maxDiscomfort > e.threshold,
		})
	}
	return candidates
}
