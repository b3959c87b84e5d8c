package models

import "time"

// ReductionStep is the estimated number of combinations left after one filter.
type ReductionStep struct {
	Filter    string
	Remaining int64
}

// ReductionReport approximates how far the enabled filters shrink the combination space.
type ReductionReport struct {
	Game               GameID
	Initial            int64
	Steps              []ReductionStep
	Final              int64
	EliminationPercent float64
	Samples            int
	ModelApplied       bool
}

// AutoTuneResult is the outcome of a pool-size search and filter calibration run.
type AutoTuneResult struct {
	Game            GameID
	PoolSize        int
	SuccessCount    int
	BacktestDraws   int
	HitTarget       int
	QualifyingDraws int
	Disabled        []Filter
	Tickets         int
	Config          FilterConfig
}

// DrawAnalysis is the back-test record of a single historical draw.
type DrawAnalysis struct {
	Date             time.Time
	Main             []int
	PoolSize         int
	Hits             int
	HitRate          float64 // percent of the draw's numbers inside the pool
	RecentSimilarity float64 // percent
	OlderSimilarity  float64 // percent
	HitsToWin        int
	ProbAtLeast      float64
	FailedFilters    []string
}

// Passed reports whether the draw cleared every enabled filter.
func (d DrawAnalysis) Passed() bool { return len(d.FailedFilters) == 0 }

// PastDrawReport collects the back-test records of the most recent draws.
type PastDrawReport struct {
	Game  GameID
	Draws []DrawAnalysis
}
