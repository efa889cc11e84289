package advisor

import (
	"fmt"
	"strings"
	"time"

	"github.com/ridecast/ridecast/internal/forecast"
	"github.com/ridecast/ridecast/internal/notify"
	"github.com/ridecast/ridecast/internal/route"
)

// dateFormat is the rider-facing date rendering.
const dateFormat = "Monday 02 January 2006"

// LegResult is one evaluated run: the candidate lists and selections for
// every requested gear level, plus what is needed to render them.
type LegResult struct {
	Mode       route.RunMode
	Route      route.Route
	Table      *forecast.Table
	Window     Window
	Selections []Selection
}

// SelectionFor returns the selection for a gear level, or nil.
func (r *LegResult) SelectionFor(gear GearLevel) *Selection {
	for i := range r.Selections {
		if r.Selections[i].Gear == gear {
			return &r.Selections[i]
		}
	}
	return nil
}

// BestSelection returns the viable selection minimizing the best
// candidate's combined score, or nil when no gear has a viable departure.
// This is the standalone per-leg gear choice, used when no round trip
// constrains the gear.
func (r *LegResult) BestSelection() *Selection {
	var best *Selection
	for i := range r.Selections {
		sel := &r.Selections[i]
		if sel.Best == nil {
			continue
		}
		if best == nil || sel.Best.Score() < best.Best.Score() {
			best = sel
		}
	}
	return best
}

// rideLabel names the leg for the rider.
func rideLabel(mode route.RunMode) string {
	if mode == route.Morning {
		return "Departure"
	}
	return "Return"
}

// RenderLeg builds the detailed per-leg notification: one field per
// candidate slot, each listing the forecast at every waypoint along the
// projected ride, plus wind-arc verdicts. gear pins the rendered gear
// level (from a round-trip decision); pass GearAll to let the leg pick
// its own best.
func RenderLeg(result *LegResult, gear GearLevel, now time.Time, locale string) notify.Message {
	var sel *Selection
	if gear == GearAll {
		sel = result.BestSelection()
	} else {
		sel = result.SelectionFor(gear)
	}
	if sel == nil || sel.Best == nil {
		return notify.Compose(notify.KindNoDeparture, notify.Message{
			Fields: []notify.Field{{
				Name:  "Window",
				Value: windowSummary(result.Window),
			}},
		})
	}

	fields := make([]notify.Field, 0, len(sel.Candidates))
	for _, c := range sel.Candidates {
		fields = append(fields, candidateField(result, sel.Best, c))
	}

	worst := worstCode(result, sel.Best.Departure)
	date := now.Format(dateFormat)

	msg := notify.Message{
		Title: fmt.Sprintf("%s %s Forecast — %s", worst.Emoji(), rideLabel(result.Mode), date),
		Description: fmt.Sprintf(
			"Here is the detailed weather analysis to help you choose the best time to ride on **%s**.\n"+
				"Recommended time assumes you're wearing **%s**.\n"+
				"The most significant condition expected during the ride: **%s**.",
			date, sel.Gear.Label(), worst.Describe(locale)),
		Fields: fields,
	}
	return notify.Compose(notify.KindBestDeparture, msg)
}

// candidateField renders one departure slot as a message field: the slot
// times and scores in the name, the per-waypoint forecast lines in the
// value.
func candidateField(result *LegResult, best *Candidate, c Candidate) notify.Field {
	prefix := "🟡 "
	switch {
	case c.Departure.Equal(best.Departure) && !c.Refused:
		prefix = "🟢 "
	case c.Refused:
		prefix = "🔴 "
	}

	arrival := c.Departure.Add(result.Route.TripDuration())
	name := fmt.Sprintf("%s%s → %s (risk=%.2f, discomfort=%.2f)",
		prefix, c.Departure.Format("15:04"), arrival.Format("15:04"), c.Risk, c.Discomfort)

	arrivals := result.Route.ArrivalTimes(c.Departure)
	lines := make([]string, 0, len(result.Route.Waypoints))
	for i, wp := range result.Route.Waypoints {
		obs, ok := result.Table.At(wp.Name, arrivals[i])
		if !ok {
			continue
		}
		line := obs.Summary(wp.Name)
		if wp.Arc != nil && obs.WindDirection != nil {
			if wp.Arc.Contains(*obs.WindDirection) {
				line += " ✅"
			} else {
				line += " ❌"
			}
		}
		lines = append(lines, line)
	}

	return notify.Field{Name: name, Value: strings.Join(lines, "\n")}
}

// worstCode returns the most severe condition code along the ride starting
// at the given departure. WMO codes grow with severity, so the numeric
// maximum is the headline condition.
func worstCode(result *LegResult, departure time.Time) forecast.Code {
	worst := forecast.CodeClearSky
	arrivals := result.Route.ArrivalTimes(departure)
	for i, wp := range result.Route.Waypoints {
		obs, ok := result.Table.At(wp.Name, arrivals[i])
		if !ok || obs.Code == nil {
			continue
		}
		if *obs.Code > worst {
			worst = *obs.Code
		}
	}
	return worst
}

// RenderRoundTrip builds the combined morning+evening summary message.
func RenderRoundTrip(rt *RoundTrip, now time.Time) notify.Message {
	date := now.Format(dateFormat)
	msg := notify.Message{
		Title: fmt.Sprintf("🏍️ Round-trip Forecast — %s", date),
		Description: fmt.Sprintf(
			"Here is the round-trip weather forecast for **%s**.\n"+
				"Recommended gear: **%s**.\n\n"+
				"**Departure at %s** — Risk: %.2f, Discomfort: %.2f\n"+
				"**Return at %s** — Risk: %.2f, Discomfort: %.2f",
			date, rt.Gear.Label(),
			rt.Morning.Departure.Format("15:04"), rt.Morning.Risk, rt.Morning.Discomfort,
			rt.Evening.Departure.Format("15:04"), rt.Evening.Risk, rt.Evening.Discomfort),
	}
	return notify.Compose(notify.KindRoundTrip, msg)
}

// RenderNoRoundTrip builds the distinct "no viable round trip" message.
func RenderNoRoundTrip(now time.Time) notify.Message {
	return notify.Compose(notify.KindNoRoundTrip, notify.Message{
		Fields: []notify.Field{{
			Name:  "Date",
			Value: now.Format(dateFormat),
		}},
	})
}

func windowSummary(w Window) string {
	if w.Empty() {
		return "empty (current time is already past the latest allowed departure)"
	}
	return fmt.Sprintf("%s → %s", w.Start.Format("15:04"), w.End.Format("15:04"))
}
