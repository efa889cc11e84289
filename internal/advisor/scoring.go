package advisor

import (
	"github.com/ridecast/ridecast/internal/forecast"
	"github.com/ridecast/ridecast/internal/route"
)

// hazardPenalty is the additive risk contribution of each exceeded limit.
// Two exceeded limits saturate the scale.
const hazardPenalty = 0.6

// ScoringConfig holds the rider's weather limits. All values are
// configuration, not code paths: changing a limit never changes the shape
// of the scoring functions.
type ScoringConfig struct {
	// MaxRain is the acceptable precipitation in mm per sampling interval.
	MaxRain float64

	// MaxWind is the acceptable wind speed in km/h regardless of direction.
	MaxWind float64

	// MaxWindGoodDirection is the wind speed tolerated when the wind blows
	// from inside the waypoint's acceptable arc.
	MaxWindGoodDirection float64

	// MinTemp is the minimum acceptable temperature in °C.
	MinTemp float64

	// WindComfortDivisor scales how fast wind above 15 km/h erodes
	// comfort.
	WindComfortDivisor float64

	// BannedCodes are weather condition codes that veto a ride outright.
	BannedCodes map[forecast.Code]struct{}
}

// DefaultScoringConfig returns the limits tuned for the Tournai–Mons
// commute.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		MaxRain:              0.2,
		MaxWind:              25,
		MaxWindGoodDirection: 35,
		MinTemp:              6,
		WindComfortDivisor:   25,
		BannedCodes:          forecast.DefaultBannedCodes(),
	}
}

// Risk scores how unsafe the conditions are at one waypoint, in [0,1].
// A banned condition code is a hard veto and returns 1.0 immediately.
// Otherwise wind, rain and cold each add a fixed penalty; the wind penalty
// is gated by direction — wind from inside the waypoint's acceptable arc is
// tolerated up to a higher limit.
func (c ScoringConfig) Risk(windSpeed, precipitation, temperature float64, code forecast.Code, windDirection float64, wp route.Waypoint) float64 {
	if _, banned := c.BannedCodes[code]; banned {
		return 1.0
	}

	directionOK := wp.Arc.Contains(windDirection)

	score := 0.0
	if windSpeed > c.MaxWind {
		if !directionOK || windSpeed > c.MaxWindGoodDirection {
			score += hazardPenalty
		}
	}
	if precipitation > c.MaxRain {
		score += hazardPenalty
	}
	if temperature < c.MinTemp {
		score += hazardPenalty
	}
	return clamp01(score)
}

// Discomfort scores how unpleasant the ride is at one waypoint for the
// given gear, in [0,1]. It is a smooth comfort proxy, independent of the
// hard safety veto: temperature distance from the gear's ideal, rain, and
// wind each contribute.
func (c ScoringConfig) Discomfort(temperature, precipitation, windSpeed float64, gear GearLevel) float64 {
	tempPenalty := abs(temperature-gear.IdealTemp()) / 20
	rainPenalty := min1(precipitation / 1.5)
	windPenalty := max0((windSpeed - 15) / c.WindComfortDivisor)
	return clamp01(tempPenalty + rainPenalty + windPenalty)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
