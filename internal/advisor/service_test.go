package advisor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecast/ridecast/internal/advisor"
	"github.com/ridecast/ridecast/internal/forecast"
	"github.com/ridecast/ridecast/internal/notify"
	"github.com/ridecast/ridecast/internal/route"
)

// stubProvider serves a prebuilt table and counts fetches.
type stubProvider struct {
	mu      sync.Mutex
	table   *forecast.Table
	err     error
	fetches int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) FetchRoute(_ context.Context, _ []route.Waypoint, _ time.Time) (*forecast.Table, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetches++
	if p.err != nil {
		return nil, p.err
	}
	return p.table, nil
}

// recordingNotifier captures every message sent.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (n *recordingNotifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.err
}

func (n *recordingNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	titles := make([]string, len(n.messages))
	for i, m := range n.messages {
		titles[i] = m.Title
	}
	return titles
}

func testParams() advisor.Params {
	return advisor.Params{
		MorningLatestDeparture: advisor.ClockTime{Hour: 9, Minute: 45},
		MorningEarlySlack:      45 * time.Minute,
		EveningFirstDeparture:  advisor.ClockTime{Hour: 17, Minute: 30},
		EveningLateSlack:       30 * time.Minute,
		Gear:                   advisor.GearAll,
		Threshold:              0.5,
		Tolerance:              0.15,
		Scoring:                advisor.DefaultScoringConfig(),
		Locale:                 "en",
	}
}

// singlePointRoutes keep the table small: one waypoint, so arrivals equal
// departures.
func singlePointRoutes() map[route.RunMode]route.Route {
	wp := []route.Waypoint{{Name: "X", Lat: 50.5, Lon: 3.5}}
	return map[route.RunMode]route.Route{
		route.Morning: {Mode: route.Morning, Waypoints: wp, LegDuration: 15 * time.Minute},
		route.Evening: {Mode: route.Evening, Waypoints: wp, LegDuration: 15 * time.Minute},
	}
}

// dayTable holds good weather at every 15-minute point of the day for one
// waypoint.
func dayTable(day time.Time) *forecast.Table {
	series := map[string]map[time.Time]*forecast.Observation{"X": {}}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	for ts := start; ts.Before(start.Add(24 * time.Hour)); ts = ts.Add(forecast.SampleInterval) {
		series["X"][ts] = obs(0, 15, 10, 300, forecast.CodeClearSky)
	}
	return forecast.NewTable(series)
}

func newTestService(t *testing.T, provider *stubProvider, notifier *recordingNotifier) *advisor.Service {
	t.Helper()

	svc, err := advisor.NewService(advisor.ServiceConfig{
		Params: testParams(),
		Routes: singlePointRoutes(),
		Forecasts: forecast.NewService(forecast.ServiceConfig{
			Provider: provider,
			Logger:   zerolog.Nop(),
		}),
		Notifier: notifier,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	return svc
}

func TestNewService_Validation(t *testing.T) {
	cfg := advisor.ServiceConfig{
		Params: testParams(),
		Routes: singlePointRoutes(),
		Logger: zerolog.Nop(),
	}

	cfg.Params.Gear = advisor.GearLevel(7)
	_, err := advisor.NewService(cfg)
	assert.ErrorIs(t, err, advisor.ErrInvalidGearLevel)

	cfg = advisor.ServiceConfig{Params: testParams(), Logger: zerolog.Nop()}
	cfg.Routes = map[route.RunMode]route.Route{
		route.Morning: singlePointRoutes()[route.Morning],
	}
	_, err = advisor.NewService(cfg)
	assert.ErrorContains(t, err, "missing route")

	cfg.Routes = map[route.RunMode]route.Route{
		route.Morning: singlePointRoutes()[route.Morning],
		route.Evening: singlePointRoutes()[route.Morning],
	}
	_, err = advisor.NewService(cfg)
	assert.ErrorContains(t, err, "declares mode")
}

func TestRunDay_RoundTripFound(t *testing.T) {
	now := time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC)
	provider := &stubProvider{table: dayTable(now)}
	notifier := &recordingNotifier{}
	svc := newTestService(t, provider, notifier)

	require.NoError(t, svc.RunDay(context.Background(), now))

	titles := notifier.titles()
	require.Len(t, titles, 3)
	assert.Contains(t, titles[0], "Round-trip Forecast")
	assert.Contains(t, titles[1], "Departure Forecast")
	assert.Contains(t, titles[2], "Return Forecast")

	// Both legs share one waypoint set, so one fetch covers the day.
	assert.Equal(t, 1, provider.fetches)
}

func TestRunDay_NoRoundTrip(t *testing.T) {
	now := time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC)

	// Freezing all day: the cold penalty refuses every slot.
	series := map[string]map[time.Time]*forecast.Observation{"X": {}}
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	for ts := start; ts.Before(start.Add(24 * time.Hour)); ts = ts.Add(forecast.SampleInterval) {
		series["X"][ts] = obs(0, -2, 10, 300, forecast.CodeClearSky)
	}

	provider := &stubProvider{table: forecast.NewTable(series)}
	notifier := &recordingNotifier{}
	svc := newTestService(t, provider, notifier)

	require.NoError(t, svc.RunDay(context.Background(), now))

	titles := notifier.titles()
	require.Len(t, titles, 3)
	assert.Equal(t, "No Viable Round Trip", titles[0])
	assert.Equal(t, "No Acceptable Departure", titles[1])
	assert.Equal(t, "No Acceptable Departure", titles[2])
}

func TestRunDay_ProviderErrorAborts(t *testing.T) {
	now := time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC)
	provider := &stubProvider{err: errors.New("upstream down")}
	notifier := &recordingNotifier{}
	svc := newTestService(t, provider, notifier)

	err := svc.RunDay(context.Background(), now)
	require.Error(t, err)
	assert.ErrorIs(t, err, forecast.ErrProviderUnavailable)

	titles := notifier.titles()
	require.Len(t, titles, 1)
	assert.Equal(t, "Forecast API Error", titles[0])
}

func TestRunDay_NotifierFailureIsNotFatal(t *testing.T) {
	now := time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC)
	provider := &stubProvider{table: dayTable(now)}
	notifier := &recordingNotifier{err: errors.New("webhook 500")}
	svc := newTestService(t, provider, notifier)

	assert.NoError(t, svc.RunDay(context.Background(), now))
}

func TestWithAnchors(t *testing.T) {
	now := time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC)
	provider := &stubProvider{table: dayTable(now)}
	notifier := &recordingNotifier{}
	svc := newTestService(t, provider, notifier)

	// Anchors moved well into the evening; the clone must use them, the
	// original must be untouched.
	clone := svc.WithAnchors(
		advisor.ClockTime{Hour: 11, Minute: 0},
		advisor.ClockTime{Hour: 19, Minute: 0},
	)

	result, err := clone.RunLeg(context.Background(), route.Morning, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 2, 11, 0, 0, 0, time.UTC), result.Window.End)

	result, err = svc.RunLeg(context.Background(), route.Morning, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 2, 9, 45, 0, 0, time.UTC), result.Window.End)
}
