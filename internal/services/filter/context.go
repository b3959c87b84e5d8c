package filter

import (
	"time"

	"MillionaireMaker/internal/domain/models"
)

// Context is the historical state a combination is judged against.
type Context struct {
	Profile *models.StatisticalProfile
	// History is the valid draw sequence, ascending by date.
	History []models.Draw
	Recent  []models.Draw
	Older   []models.Draw
	// LastDraw is the main numbers of the most recent draw, nil without history.
	LastDraw []int

	RecentThreshold float64
	OlderThreshold  float64
}

// NewContext builds the similarity windows relative to now: recent holds draws
// on or after now-1y, older holds draws in [now-2y, now-1y).
func NewContext(p *models.StatisticalProfile, history []models.Draw, now time.Time, cfg models.FilterConfig) Context {
	oneYear := now.AddDate(-1, 0, 0)
	twoYears := now.AddDate(-2, 0, 0)
	c := Context{
		Profile:         p,
		History:         history,
		RecentThreshold: cfg.RecentSimilarity,
		OlderThreshold:  cfg.OlderSimilarity,
	}
	for _, d := range history {
		switch {
		case !d.Date.Before(oneYear):
			c.Recent = append(c.Recent, d)
		case !d.Date.Before(twoYears):
			c.Older = append(c.Older, d)
		}
	}
	if len(history) > 0 {
		c.LastDraw = history[len(history)-1].Main
	}
	return c
}

// Passes evaluates the raw predicate of f regardless of whether it is enabled.
func (c Context) Passes(f models.Filter, nums []int) bool {
	rangeMax := c.Profile.Game.Range
	switch f {
	case models.FilterArithmetic:
		return !IsArithmeticProgression(nums)
	case models.FilterSequential:
		return !ContainsTooManySequentials(nums, SequentialThreshold)
	case models.FilterBalance:
		return IsBalanced(nums, rangeMax)
	case models.FilterSum:
		return SumWithin(nums, c.Profile)
	case models.FilterDigitSum:
		return DigitSumWithin(nums, c.Profile)
	case models.FilterRankSum:
		return RankSumWithin(nums, c.Profile)
	case models.FilterPositional:
		return WithinPositionalBounds(nums, c.Profile.PositionalBounds)
	case models.FilterSimilarity:
		return !IsTooSimilar(nums, c.Recent, c.RecentThreshold) && !IsTooSimilar(nums, c.Older, c.OlderThreshold)
	case models.FilterDelta:
		return DeltaWithin(nums, c.Profile)
	case models.FilterLastDigit:
		return HasValidLastDigits(nums, c.Profile.LastDigits)
	case models.FilterConsecutive:
		return HasValidConsecutiveRepeat(nums, c.LastDraw)
	case models.FilterNumberGroup:
		return HasValidNumberGroups(nums, rangeMax)
	}
	return true
}

// FirstFailure returns the first enabled filter, in priority order, that rejects nums.
func (c Context) FirstFailure(cfg models.FilterConfig, nums []int) (models.Filter, bool) {
	for _, f := range models.AllFilters {
		if cfg.Enabled(f) && !c.Passes(f, nums) {
			return f, true
		}
	}
	return 0, false
}

// Accepts reports whether nums passes every enabled filter.
func (c Context) Accepts(cfg models.FilterConfig, nums []int) bool {
	_, failed := c.FirstFailure(cfg, nums)
	return !failed
}

// Failures returns every enabled filter that rejects nums, in priority order.
func (c Context) Failures(cfg models.FilterConfig, nums []int) []models.Filter {
	var out []models.Filter
	for _, f := range models.AllFilters {
		if cfg.Enabled(f) && !c.Passes(f, nums) {
			out = append(out, f)
		}
	}
	return out
}
