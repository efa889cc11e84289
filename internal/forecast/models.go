// Package forecast provides access to short-term weather forecasts along
// the commute route: a provider abstraction, an immutable per-run forecast
// table, and an in-process memoizing service.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ridecast/ridecast/internal/route"
)

// Forecast errors.
var (
	ErrProviderUnavailable = errors.New("forecast provider unavailable")
	ErrUnexpectedResponse  = errors.New("unexpected forecast response format")
)

// SampleInterval is the forecast grid resolution. Departure slots and
// per-waypoint arrivals are aligned to this grid.
const SampleInterval = 15 * time.Minute

// Observation is a single weather sample at one waypoint and timestamp.
// Fields are pointers because the provider may return nulls; a missing
// required field makes the observation unusable, never zero-filled.
type Observation struct {
	// Precipitation in mm over the sampling interval.
	Precipitation *float64

	// Temperature in °C at 2m.
	Temperature *float64

	// WindSpeed in km/h at 10m.
	WindSpeed *float64

	// WindDirection in degrees (0-360) at 10m.
	WindDirection *float64

	// Code is the WMO weather condition code.
	Code *Code

	// PrecipProbability in percent, resampled from the hourly series.
	// Optional: informational only, never required for scoring.
	PrecipProbability *float64
}

// Complete reports whether every field required for scoring is present.
func (o *Observation) Complete() bool {
	return o != nil &&
		o.Precipitation != nil &&
		o.Temperature != nil &&
		o.WindSpeed != nil &&
		o.WindDirection != nil &&
		o.Code != nil
}

// Summary renders the observation as a compact single line for
// notification fields.
func (o *Observation) Summary(name string) string {
	if !o.Complete() {
		return name + ": incomplete data"
	}
	return fmt.Sprintf("%s: %s mm | %s km/h | %s° | Dir %s°",
		name,
		strconv.FormatFloat(*o.Precipitation, 'f', -1, 64),
		strconv.FormatFloat(*o.WindSpeed, 'f', -1, 64),
		strconv.FormatFloat(*o.Temperature, 'f', -1, 64),
		strconv.FormatFloat(*o.WindDirection, 'f', -1, 64))
}

// Table maps waypoint name → timestamp → observation for one (route, date)
// fetch. It is built once per run and read-only afterwards.
type Table struct {
	byWaypoint map[string]map[time.Time]*Observation
	fetchedAt  time.Time
}

// NewTable builds a table from per-waypoint series.
func NewTable(series map[string]map[time.Time]*Observation) *Table {
	return &Table{byWaypoint: series, fetchedAt: time.Now()}
}

// At returns the observation for a waypoint at an exact timestamp.
func (t *Table) At(waypoint string, ts time.Time) (*Observation, bool) {
	byTime, ok := t.byWaypoint[waypoint]
	if !ok {
		return nil, false
	}
	obs, ok := byTime[ts]
	return obs, ok
}

// Waypoints returns the waypoint names present in the table, sorted.
func (t *Table) Waypoints() []string {
	names := make([]string, 0, len(t.byWaypoint))
	for name := range t.byWaypoint {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FetchedAt reports when the table was built.
func (t *Table) FetchedAt() time.Time {
	return t.fetchedAt
}

// Provider fetches a forecast table for a set of waypoints on a date.
type Provider interface {
	// FetchRoute fetches the day's time series for every waypoint, as one
	// batched multi-point request where the upstream API supports it.
	FetchRoute(ctx context.Context, waypoints []route.Waypoint, date time.Time) (*Table, error)

	// Name returns the provider name for logging.
	Name() string
}
