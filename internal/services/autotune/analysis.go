package autotune

import (
	"fmt"

	"gonum.org/v1/gonum/stat/combin"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/services/filter"
	"MillionaireMaker/internal/services/pool"
)

// AnalyzePastDraws back-tests the most recent draws against the current
// pool size and filter toggles. Similarity windows are relative to each
// draw's own date.
func (t *Tuner) AnalyzePastDraws(p *models.StatisticalProfile, draws []models.Draw, cfg models.FilterConfig) (models.PastDrawReport, error) {
	game := p.Game
	if len(draws) < BacktestDraws {
		return models.PastDrawReport{}, fmt.Errorf("%w: analysis needs %d draws, have %d", models.ErrInsufficientHistory, BacktestDraws, len(draws))
	}
	report := models.PastDrawReport{Game: game.ID}
	for _, d := range draws[len(draws)-BacktestDraws:] {
		prior := HistoryBefore(draws, d.Date)
		if len(prior) == 0 {
			continue
		}
		fc := filter.NewContext(p, prior, d.Date, cfg)
		drawPool := pool.Frequency(game.Range, prior, cfg.PoolSize)
		hits := pool.Hits(drawPool, d.Main)
		report.Draws = append(report.Draws, models.DrawAnalysis{
			Date:             d.Date,
			Main:             d.Main,
			PoolSize:         len(drawPool),
			Hits:             hits,
			HitRate:          float64(hits) / float64(game.StandardSize) * 100,
			RecentSimilarity: filter.MaxSimilarity(d.Main, fc.Recent),
			OlderSimilarity:  filter.MaxSimilarity(d.Main, fc.Older),
			HitsToWin:        game.HitsToWin(),
			ProbAtLeast:      PoolHitProbability(game.Range, len(drawPool), game.StandardSize, game.HitsToWin()),
			FailedFilters:    failedChecks(fc, cfg, d.Main),
		})
	}
	return report, nil
}

// failedChecks names the enabled checks a drawn combination fails. Balance is
// reported as its two halves and similarity is left to the percentages.
func failedChecks(fc filter.Context, cfg models.FilterConfig, nums []int) []string {
	rangeMax := fc.Profile.Game.Range
	checks := []struct {
		name string
		on   bool
		ok   func() bool
	}{
		{"Arithmetic", cfg.Arithmetic, func() bool { return fc.Passes(models.FilterArithmetic, nums) }},
		{"Sequential", cfg.Sequential, func() bool { return fc.Passes(models.FilterSequential, nums) }},
		{"Odd/Even", cfg.Balance, func() bool { return filter.IsBalancedOddEven(nums) }},
		{"High/Low", cfg.Balance, func() bool { return filter.IsBalancedHighLow(nums, rangeMax) }},
		{"Sum Range", cfg.Sum, func() bool { return fc.Passes(models.FilterSum, nums) }},
		{"Digit Sum", cfg.DigitSum, func() bool { return fc.Passes(models.FilterDigitSum, nums) }},
		{"Rank Sum", cfg.RankSum, func() bool { return fc.Passes(models.FilterRankSum, nums) }},
		{"Positional", cfg.Positional, func() bool { return fc.Passes(models.FilterPositional, nums) }},
		{"Delta", cfg.Delta, func() bool { return fc.Passes(models.FilterDelta, nums) }},
		{"Last Digit", cfg.LastDigit, func() bool { return fc.Passes(models.FilterLastDigit, nums) }},
		{"Consecutive", cfg.Consecutive, func() bool { return fc.Passes(models.FilterConsecutive, nums) }},
		{"Groups", cfg.NumberGroup, func() bool { return fc.Passes(models.FilterNumberGroup, nums) }},
	}
	var failed []string
	for _, c := range checks {
		if c.on && !c.ok() {
			failed = append(failed, c.name)
		}
	}
	return failed
}

// PoolHitProbability is the hypergeometric tail P(X >= atLeast): the chance
// that a uniformly random draw of size numbers out of rangeMax puts at least
// atLeast of them inside a pool of poolSize numbers.
func PoolHitProbability(rangeMax, poolSize, size, atLeast int) float64 {
	if poolSize < size || poolSize > rangeMax || size > rangeMax {
		return 0
	}
	total := float64(combin.Binomial(rangeMax, size))
	below := 0.0
	for i := 0; i < atLeast && i <= size; i++ {
		if size-i > rangeMax-poolSize {
			continue
		}
		below += float64(combin.Binomial(poolSize, i)) * float64(combin.Binomial(rangeMax-poolSize, size-i)) / total
	}
	return max(0, 1-below)
}
