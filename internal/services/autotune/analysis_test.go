package autotune

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/services/filter"
	"MillionaireMaker/internal/services/pool"
	"MillionaireMaker/internal/services/profile"
)

func TestAnalyzePastDraws(t *testing.T) {
	g := lotto649(t)
	draws := randomDraws(g, 25, 7)
	p := profile.Compute(g, draws)
	cfg := models.DefaultFilterConfig()

	report, err := New().AnalyzePastDraws(p, draws, cfg)
	require.NoError(t, err)
	require.Len(t, report.Draws, BacktestDraws)
	assert.Equal(t, g.ID, report.Game)

	for i, a := range report.Draws {
		d := draws[len(draws)-BacktestDraws+i]
		assert.Equal(t, d.Date, a.Date)
		prior := HistoryBefore(draws, d.Date)
		hits := pool.Hits(pool.Frequency(g.Range, prior, cfg.PoolSize), d.Main)
		assert.Equal(t, hits, a.Hits)
		assert.InDelta(t, float64(hits)/6*100, a.HitRate, 1e-9)
		assert.Equal(t, cfg.PoolSize, a.PoolSize)
		assert.Equal(t, 3, a.HitsToWin)
		assert.True(t, a.ProbAtLeast >= 0 && a.ProbAtLeast <= 1)
		assert.True(t, a.RecentSimilarity >= 0 && a.RecentSimilarity <= 100)
		assert.Equal(t, a.Passed(), len(a.FailedFilters) == 0)
	}
}

func TestAnalyzePastDrawsRequiresHistory(t *testing.T) {
	g := lotto649(t)
	draws := randomDraws(g, 9, 8)
	_, err := New().AnalyzePastDraws(profile.Compute(g, draws), draws, models.DefaultFilterConfig())
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)
}

func TestAnalyzePastDrawsSkipsDrawsWithoutPriorHistory(t *testing.T) {
	g := lotto649(t)
	draws := randomDraws(g, 10, 9)
	report, err := New().AnalyzePastDraws(profile.Compute(g, draws), draws, models.DefaultFilterConfig())
	require.NoError(t, err)
	assert.Len(t, report.Draws, 9)
}

func TestFailedChecksSplitsBalance(t *testing.T) {
	g := lotto649(t)
	fc := filter.NewContext(profile.Compute(g, nil), nil, now, models.DefaultFilterConfig())
	cfg := models.DefaultFilterConfig()

	// all odd, all low, step 2, five in the first decade
	nums := []int{1, 3, 5, 7, 9, 11}
	assert.Equal(t, []string{"Arithmetic", "Odd/Even", "High/Low", "Groups"}, failedChecks(fc, cfg, nums))

	cfg.Balance = false
	assert.Equal(t, []string{"Arithmetic", "Groups"}, failedChecks(fc, cfg, nums))
}

func TestPoolHitProbability(t *testing.T) {
	assert.InDelta(t, 5.0/6.0, PoolHitProbability(4, 2, 2, 1), 1e-12)
	assert.InDelta(t, 1.0, PoolHitProbability(49, 49, 6, 3), 1e-12)
	assert.Less(t, PoolHitProbability(49, 20, 6, 3), PoolHitProbability(49, 30, 6, 3))
	assert.Equal(t, 0.0, PoolHitProbability(49, 5, 6, 3))
}
