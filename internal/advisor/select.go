package advisor

import (
	"sort"

	"github.com/ridecast/ridecast/internal/route"
)

// SelectBest picks one departure among the candidates for a run mode.
//
// Refused candidates are filtered first; if none survive there is no
// viable departure and the result is nil. The survivors are ordered best
// rounded score first, and among equal scores by the mode's preferred time
// extreme. Then, rather than taking the raw minimum, every candidate whose
// combined score sits within `tolerance` of the best (absolute difference,
// not a ratio) is treated as practically equivalent, and the mode's
// preferred extreme wins inside that band: the latest slot in the morning
// (delay as long as safely possible before the arrival deadline), the
// earliest in the evening (leave as soon as safely possible). A rider
// wants predictability over micro-optimizing a third decimal of risk.
func SelectBest(mode route.RunMode, candidates []Candidate, tolerance float64) *Candidate {
	viable := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.Refused {
			viable = append(viable, c)
		}
	}
	if len(viable) == 0 {
		return nil
	}

	sort.SliceStable(viable, func(i, j int) bool {
		si, sj := round3(viable[i].Score()), round3(viable[j].Score())
		if si != sj {
			return si < sj
		}
		if mode.PrefersLater() {
			return viable[i].Departure.After(viable[j].Departure)
		}
		return viable[i].Departure.Before(viable[j].Departure)
	})

	bestScore := viable[0].Score()

	best := viable[0]
	for _, c := range viable[1:] {
		if diff := c.Score() - bestScore; diff < -tolerance || diff > tolerance {
			continue
		}
		if mode.PrefersLater() {
			if c.Departure.After(best.Departure) {
				best = c
			}
		} else if c.Departure.Before(best.Departure) {
			best = c
		}
	}
	return &best
}
