package advisor

// CombineRoundTrip pairs morning and evening selections gear by gear and
// picks the gear level minimizing the summed combined score across both
// legs. A gear level only forms a pair when both legs selected a candidate
// for it; a pair with either leg refused is never picked. Nil means no
// gear level yields a viable round trip — a distinct outcome from either
// leg failing alone, and it suppresses the per-leg "pick your own best
// gear" fallback for the combined summary.
func CombineRoundTrip(morning, evening []Selection) *RoundTrip {
	evByGear := make(map[GearLevel]*Candidate, len(evening))
	for _, sel := range evening {
		if sel.Best != nil {
			evByGear[sel.Gear] = sel.Best
		}
	}

	var best *RoundTrip
	for _, m := range morning {
		if m.Best == nil {
			continue
		}
		e, ok := evByGear[m.Gear]
		if !ok {
			continue
		}

		pair := RoundTrip{
			Gear:            m.Gear,
			Morning:         *m.Best,
			Evening:         *e,
			TotalRisk:       m.Best.Risk + e.Risk,
			TotalDiscomfort: m.Best.Discomfort + e.Discomfort,
			Refused:         m.Best.Refused || e.Refused,
		}
		if pair.Refused {
			continue
		}
		if best == nil || round3(pair.Score()) < round3(best.Score()) {
			p := pair
			best = &p
		}
	}
	return best
}
