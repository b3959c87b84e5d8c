package models

import (
	"fmt"
	"strings"
)

// Filter names one plausibility predicate. The declaration order is the
// priority order used when attributing a rejected sample to a filter.
type Filter int

const (
	FilterArithmetic Filter = iota
	FilterSequential
	FilterBalance
	FilterSum
	FilterDigitSum
	FilterRankSum
	FilterPositional
	FilterSimilarity
	FilterDelta
	FilterLastDigit
	FilterConsecutive
	FilterNumberGroup
)

// AllFilters lists every filter in priority order.
var AllFilters = []Filter{
	FilterArithmetic, FilterSequential, FilterBalance, FilterSum, FilterDigitSum, FilterRankSum,
	FilterPositional, FilterSimilarity, FilterDelta, FilterLastDigit, FilterConsecutive, FilterNumberGroup,
}

var filterKeys = [...]string{
	"arithmetic", "sequential", "balance", "sum", "digit_sum", "rank_sum",
	"positional", "similarity", "delta", "last_digit", "consecutive", "number_group",
}

var filterTitles = [...]string{
	"Arithmetic", "Sequential", "Balance", "Statistical Sum", "Sum of Digits", "Sum of Ranks",
	"Positional", "Similarity", "Delta System", "Last Digits", "Consecutive Repeats", "Number Groups",
}

var filterDescriptions = [...]string{
	"Rejects combinations forming an arithmetic progression with a step above 1, like 10-20-30-40-50.",
	"Rejects combinations containing a long run of consecutive numbers.",
	"Requires a reasonable mix of odd/even and high/low numbers.",
	"Rejects combinations whose sum is outside 1.5 standard deviations of the historical mean.",
	"Rejects combinations whose digit sum is outside the historical norm.",
	"Rejects combinations whose frequency-rank sum is outside the historical norm.",
	"Rejects combinations with a number outside its typical range for its sorted position.",
	"Rejects combinations too similar to draws from the last one or two years.",
	"Rejects combinations whose sum of consecutive differences is statistically uncommon.",
	"Rejects combinations with too many numbers sharing the same last digit.",
	"Rejects combinations repeating more than 2 numbers from the latest draw.",
	"Rejects combinations clustered in one or two decade groups.",
}

// String returns the filter's stable key.
func (f Filter) String() string {
	if f < 0 || int(f) >= len(filterKeys) {
		return fmt.Sprintf("filter(%d)", int(f))
	}
	return filterKeys[f]
}

// Title returns the display name used in reduction reports.
func (f Filter) Title() string {
	if f < 0 || int(f) >= len(filterTitles) {
		return f.String()
	}
	return filterTitles[f]
}

func (f Filter) Description() string {
	if f < 0 || int(f) >= len(filterDescriptions) {
		return ""
	}
	return filterDescriptions[f]
}

// ParseFilter resolves a filter key.
func ParseFilter(s string) (Filter, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, k := range filterKeys {
		if k == key {
			return Filter(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown filter %q", ErrInvalidConfig, s)
}

// PoolStrategy selects how the candidate pool is built.
type PoolStrategy string

const (
	PoolDynamic   PoolStrategy = "dynamic"
	PoolFrequency PoolStrategy = "frequency"
	PoolModel     PoolStrategy = "model"
)

const (
	DefaultPoolSize         = 30
	DefaultRecentSimilarity = 49.0
	DefaultOlderSimilarity  = 60.0
)

// FilterConfig holds the filter toggles and pool parameters for one engine pass.
// Owned by the caller; the engine only reads it.
type FilterConfig struct {
	Arithmetic  bool
	Sequential  bool
	Balance     bool
	Sum         bool
	DigitSum    bool
	RankSum     bool
	Positional  bool
	Delta       bool
	LastDigit   bool
	Similarity  bool
	Consecutive bool
	NumberGroup bool

	RecentSimilarity float64 // percent
	OlderSimilarity  float64 // percent

	PoolSize     int
	PoolStrategy PoolStrategy
}

// DefaultFilterConfig enables every filter.
func DefaultFilterConfig() FilterConfig {
	cfg := FilterConfig{
		RecentSimilarity: DefaultRecentSimilarity,
		OlderSimilarity:  DefaultOlderSimilarity,
		PoolSize:         DefaultPoolSize,
		PoolStrategy:     PoolDynamic,
	}
	for _, f := range AllFilters {
		cfg.SetEnabled(f, true)
	}
	return cfg
}

// Enabled reports whether f is switched on.
func (c FilterConfig) Enabled(f Filter) bool {
	switch f {
	case FilterArithmetic:
		return c.Arithmetic
	case FilterSequential:
		return c.Sequential
	case FilterBalance:
		return c.Balance
	case FilterSum:
		return c.Sum
	case FilterDigitSum:
		return c.DigitSum
	case FilterRankSum:
		return c.RankSum
	case FilterPositional:
		return c.Positional
	case FilterSimilarity:
		return c.Similarity
	case FilterDelta:
		return c.Delta
	case FilterLastDigit:
		return c.LastDigit
	case FilterConsecutive:
		return c.Consecutive
	case FilterNumberGroup:
		return c.NumberGroup
	}
	return false
}

func (c *FilterConfig) SetEnabled(f Filter, on bool) {
	switch f {
	case FilterArithmetic:
		c.Arithmetic = on
	case FilterSequential:
		c.Sequential = on
	case FilterBalance:
		c.Balance = on
	case FilterSum:
		c.Sum = on
	case FilterDigitSum:
		c.DigitSum = on
	case FilterRankSum:
		c.RankSum = on
	case FilterPositional:
		c.Positional = on
	case FilterSimilarity:
		c.Similarity = on
	case FilterDelta:
		c.Delta = on
	case FilterLastDigit:
		c.LastDigit = on
	case FilterConsecutive:
		c.Consecutive = on
	case FilterNumberGroup:
		c.NumberGroup = on
	}
}

// EnabledFilters returns the enabled filters in priority order.
func (c FilterConfig) EnabledFilters() []Filter {
	var out []Filter
	for _, f := range AllFilters {
		if c.Enabled(f) {
			out = append(out, f)
		}
	}
	return out
}

// PresetNames lists the accepted preset names.
var PresetNames = []string{"default", "balanced", "strict", "hot", "cold", "minimal"}

// Preset returns a named starting configuration. Unlisted toggles stay off
// except consecutive, number-group, digit-sum, rank-sum and arithmetic, which
// every preset keeps on.
func Preset(name string) (FilterConfig, error) {
	cfg := DefaultFilterConfig()
	set := func(seq, sim, bal, sum, pos, delta, last bool) {
		cfg.Sequential, cfg.Similarity, cfg.Balance, cfg.Sum = seq, sim, bal, sum
		cfg.Positional, cfg.Delta, cfg.LastDigit = pos, delta, last
	}
	switch strings.ToLower(name) {
	case "", "default":
	case "balanced":
		set(true, true, true, true, true, false, false)
	case "strict":
		set(true, true, true, true, true, true, true)
	case "hot", "cold":
		set(false, true, false, false, false, false, false)
	case "minimal":
		set(true, true, false, false, false, false, false)
	default:
		return FilterConfig{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
	}
	return cfg, nil
}
