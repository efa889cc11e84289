package route_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecast/ridecast/internal/route"
)

func TestRunMode(t *testing.T) {
	assert.Equal(t, "morning", route.Morning.String())
	assert.Equal(t, "evening", route.Evening.String())
	assert.True(t, route.Morning.Valid())
	assert.False(t, route.RunMode(9).Valid())

	assert.True(t, route.Morning.PrefersLater())
	assert.False(t, route.Evening.PrefersLater())
}

func TestParseRunMode(t *testing.T) {
	m, err := route.ParseRunMode("morning")
	require.NoError(t, err)
	assert.Equal(t, route.Morning, m)

	m, err = route.ParseRunMode("evening")
	require.NoError(t, err)
	assert.Equal(t, route.Evening, m)

	_, err = route.ParseRunMode("noon")
	assert.ErrorIs(t, err, route.ErrInvalidRunMode)
}

func TestWindArcContains(t *testing.T) {
	arc := &route.WindArc{Min: 270, Max: 360}

	assert.True(t, arc.Contains(270))
	assert.True(t, arc.Contains(315))
	assert.True(t, arc.Contains(360))
	assert.False(t, arc.Contains(269.9))
	assert.False(t, arc.Contains(90))

	// A nil arc accepts every direction.
	var unconstrained *route.WindArc
	assert.True(t, unconstrained.Contains(0))
	assert.True(t, unconstrained.Contains(180))
}

func validRoute() route.Route {
	return route.Route{
		Mode: route.Morning,
		Waypoints: []route.Waypoint{
			{Name: "Tournai", Lat: 50.6071, Lon: 3.3893},
			{Name: "E42", Lat: 50.549, Lon: 3.525},
			{Name: "E42bis", Lat: 50.474, Lon: 3.742},
			{Name: "Mons", Lat: 50.4541, Lon: 3.9523},
		},
		LegDuration: 15 * time.Minute,
	}
}

func TestRouteValidate(t *testing.T) {
	assert.NoError(t, validRoute().Validate())

	rt := validRoute()
	rt.Mode = route.RunMode(5)
	assert.ErrorIs(t, rt.Validate(), route.ErrInvalidRunMode)

	rt = validRoute()
	rt.Waypoints = nil
	assert.ErrorIs(t, rt.Validate(), route.ErrNoWaypoints)

	rt = validRoute()
	rt.LegDuration = 0
	assert.Error(t, rt.Validate())

	rt = validRoute()
	rt.Waypoints[0].Name = ""
	assert.Error(t, rt.Validate())

	rt = validRoute()
	rt.Waypoints[1].Lat = 95
	assert.Error(t, rt.Validate())

	rt = validRoute()
	rt.Waypoints[1].Lon = -200
	assert.Error(t, rt.Validate())
}

func TestArrivalTimes(t *testing.T) {
	rt := validRoute()
	departure := time.Date(2026, time.March, 2, 9, 15, 0, 0, time.UTC)

	arrivals := rt.ArrivalTimes(departure)
	require.Len(t, arrivals, 4)
	assert.Equal(t, departure, arrivals[0])
	assert.Equal(t, departure.Add(15*time.Minute), arrivals[1])
	assert.Equal(t, departure.Add(45*time.Minute), arrivals[3])
}

func TestTripDuration(t *testing.T) {
	assert.Equal(t, 45*time.Minute, validRoute().TripDuration())
	assert.Equal(t, time.Duration(0), route.Route{}.TripDuration())
}
