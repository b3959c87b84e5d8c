package autotune

import (
	"fmt"
	"math"
	"sort"
	"time"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/services/filter"
	"MillionaireMaker/internal/services/pool"
	"MillionaireMaker/internal/services/profile"
)

const (
	// MinHistory is the number of valid draws auto-tuning requires, and the
	// prior history a back-tested draw needs to count in the pool-size search.
	MinHistory = 20
	// BacktestDraws is how many of the most recent draws are back-tested.
	BacktestDraws = 10
	failureRatio  = 0.5
	ticketBase    = 50.0
	minTickets    = 5
	maxTickets    = 50
)

// Tuner calibrates pool size and filter toggles against recent history.
type Tuner struct {
	now func() time.Time
}

type Option func(*Tuner)

// WithClock overrides the time source used for similarity windows.
func WithClock(now func() time.Time) Option {
	return func(t *Tuner) { t.now = now }
}

func New(opts ...Option) *Tuner {
	t := &Tuner{now: time.Now}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Tune runs the pool-size search and filter calibration. draws must be the
// valid, date-sorted history and p its profile. cfg is not modified; the
// tuned configuration is returned in the result.
func (t *Tuner) Tune(p *models.StatisticalProfile, draws []models.Draw, cfg models.FilterConfig) (models.AutoTuneResult, error) {
	game := p.Game
	if len(draws) < MinHistory {
		return models.AutoTuneResult{}, fmt.Errorf("%w: auto-tune needs %d draws, have %d", models.ErrInsufficientHistory, MinHistory, len(draws))
	}
	backtest := draws[len(draws)-BacktestDraws:]
	hitTarget := game.HitTarget()

	best, successes := SearchPoolSize(game, draws, backtest, hitTarget)

	finalPool := pool.Frequency(game.Range, draws, best)
	var qualifying []models.Draw
	for _, d := range backtest {
		if pool.Hits(finalPool, d.Main) >= hitTarget {
			qualifying = append(qualifying, d)
		}
	}

	tuned, disabled := t.Calibrate(p, draws, qualifying, cfg)
	tuned.PoolSize = best

	return models.AutoTuneResult{
		Game:            game.ID,
		PoolSize:        best,
		SuccessCount:    successes,
		BacktestDraws:   len(backtest),
		HitTarget:       hitTarget,
		QualifyingDraws: len(qualifying),
		Disabled:        disabled,
		Tickets:         RecommendedTickets(successes),
		Config:          tuned,
	}, nil
}

// Calibrate evaluates every filter against the qualifying draws, each judged
// with the history that preceded it, and disables filters that reject more
// than half of them. It returns the adjusted copy of cfg and the disabled filters.
func (t *Tuner) Calibrate(p *models.StatisticalProfile, draws, qualifying []models.Draw, cfg models.FilterConfig) (models.FilterConfig, []models.Filter) {
	tuned := cfg
	if len(qualifying) == 0 {
		return tuned, nil
	}
	failures := make(map[models.Filter]int)
	now := t.now()
	for _, d := range qualifying {
		fc := filter.NewContext(p, HistoryBefore(draws, d.Date), now, cfg)
		for _, f := range models.AllFilters {
			if !fc.Passes(f, d.Main) {
				failures[f]++
			}
		}
	}
	var disabled []models.Filter
	for _, f := range models.AllFilters {
		if float64(failures[f])/float64(len(qualifying)) > failureRatio {
			tuned.SetEnabled(f, false)
			disabled = append(disabled, f)
		}
	}
	return tuned, disabled
}

// SearchPoolSize scans pool sizes StandardSize..Range and returns the
// smallest size with the greatest number of back-tested draws reaching
// hitTarget hits in the least-frequent pool built from their prior history.
// Draws with fewer than MinHistory prior draws are skipped.
func SearchPoolSize(game models.GameProfile, draws, backtest []models.Draw, hitTarget int) (int, int) {
	// Pools of growing size are prefixes of one ordering, so a draw's hits at
	// a size are its numbers whose position in that ordering is below it.
	var ranked [][]int
	for _, d := range backtest {
		prior := HistoryBefore(draws, d.Date)
		if len(prior) < MinHistory {
			continue
		}
		order := profile.LeastFrequentFirst(game.Range, profile.Frequencies(game.Range, prior))
		position := make([]int, game.Range+1)
		for i, n := range order {
			position[n] = i
		}
		positions := make([]int, 0, len(d.Main))
		for _, n := range d.Main {
			positions = append(positions, position[n])
		}
		ranked = append(ranked, positions)
	}

	best, maxSuccess := game.Range, -1
	for size := game.StandardSize; size <= game.Range; size++ {
		success := 0
		for _, positions := range ranked {
			hits := 0
			for _, pos := range positions {
				if pos < size {
					hits++
				}
			}
			if hits >= hitTarget {
				success++
			}
		}
		if success > maxSuccess {
			best, maxSuccess = size, success
		}
	}
	return best, maxSuccess
}

// RecommendedTickets is clamp(round(50 / max(1, successes)), 5, 50).
func RecommendedTickets(successes int) int {
	n := int(math.Floor(ticketBase/float64(max(1, successes)) + 0.5))
	return min(maxTickets, max(minTickets, n))
}

// HistoryBefore returns the prefix of date-sorted draws strictly before date.
func HistoryBefore(draws []models.Draw, date time.Time) []models.Draw {
	i := sort.Search(len(draws), func(i int) bool { return !draws[i].Date.Before(date) })
	return draws[:i]
}
