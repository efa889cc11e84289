package advisor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecast/ridecast/internal/advisor"
	"github.com/ridecast/ridecast/internal/route"
)

var selectBase = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

func slot(i int) time.Time {
	return selectBase.Add(time.Duration(i) * 15 * time.Minute)
}

func cand(i int, risk float64, refused bool) advisor.Candidate {
	return advisor.Candidate{Departure: slot(i), Risk: risk, Refused: refused}
}

func TestSelectBest_NoViableCandidates(t *testing.T) {
	assert.Nil(t, advisor.SelectBest(route.Morning, nil, 0.15))
	assert.Nil(t, advisor.SelectBest(route.Morning, []advisor.Candidate{
		cand(0, 0.9, true),
		cand(1, 0.8, true),
	}, 0.15))
}

func TestSelectBest_RefusedFilteredBeforeScoring(t *testing.T) {
	// The refused candidate has the lowest score but must never win.
	best := advisor.SelectBest(route.Morning, []advisor.Candidate{
		cand(0, 0.1, true),
		cand(1, 0.4, false),
	}, 0)
	require.NotNil(t, best)
	assert.Equal(t, slot(1), best.Departure)
}

func TestSelectBest_ToleranceBandMorningPicksLater(t *testing.T) {
	// 0.42 is within 0.15 of 0.40, so the later slot wins the morning.
	best := advisor.SelectBest(route.Morning, []advisor.Candidate{
		cand(0, 0.40, false),
		cand(1, 0.42, false),
	}, 0.15)
	require.NotNil(t, best)
	assert.Equal(t, slot(1), best.Departure)
}

func TestSelectBest_ToleranceBandEveningPicksEarlier(t *testing.T) {
	// Same scores, evening polarity: the earlier slot wins even though the
	// later one has the strictly better score.
	best := advisor.SelectBest(route.Evening, []advisor.Candidate{
		cand(0, 0.42, false),
		cand(1, 0.40, false),
	}, 0.15)
	require.NotNil(t, best)
	assert.Equal(t, slot(0), best.Departure)
}

func TestSelectBest_OutsideToleranceKeepsBestScore(t *testing.T) {
	best := advisor.SelectBest(route.Morning, []advisor.Candidate{
		cand(0, 0.40, false),
		cand(1, 0.60, false),
	}, 0.15)
	require.NotNil(t, best)
	assert.Equal(t, slot(0), best.Departure)

	best = advisor.SelectBest(route.Evening, []advisor.Candidate{
		cand(0, 0.60, false),
		cand(1, 0.40, false),
	}, 0.15)
	require.NotNil(t, best)
	assert.Equal(t, slot(1), best.Departure)
}

func TestSelectBest_RoundedTieUsesModeExtreme(t *testing.T) {
	// Scores differ only past the third decimal: numerically equal, so the
	// mode's preferred extreme decides even with zero tolerance.
	candidates := []advisor.Candidate{
		cand(0, 0.4001, false),
		cand(1, 0.4004, false),
	}

	best := advisor.SelectBest(route.Morning, candidates, 0)
	require.NotNil(t, best)
	assert.Equal(t, slot(1), best.Departure)

	best = advisor.SelectBest(route.Evening, candidates, 0)
	require.NotNil(t, best)
	assert.Equal(t, slot(0), best.Departure)
}

func TestSelectBest_SingleCandidate(t *testing.T) {
	best := advisor.SelectBest(route.Evening, []advisor.Candidate{cand(2, 0.3, false)}, 0.15)
	require.NotNil(t, best)
	assert.Equal(t, slot(2), best.Departure)
}
