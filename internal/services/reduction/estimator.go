package reduction

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/combin"

	"MillionaireMaker/internal/domain/models"
	domsvc "MillionaireMaker/internal/domain/service"
	"MillionaireMaker/internal/services/filter"
)

const (
	// DefaultSamples is the Monte-Carlo sample count.
	DefaultSamples = 10000
	// ModelThreshold is the joint score below which the model eliminates a sample.
	ModelThreshold   = 1e-10
	modelStepTitle   = "AI Analysis"
	ctxCheckInterval = 512
)

// Estimator approximates how far enabled filters shrink the combination space.
// Not safe for concurrent use because it owns its random source.
type Estimator struct {
	rng     *rand.Rand
	samples int
}

type Option func(*Estimator)

func WithSamples(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.samples = n
		}
	}
}

func New(rng *rand.Rand, opts ...Option) *Estimator {
	e := &Estimator{rng: rng, samples: DefaultSamples}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Combinations is C(n, k), or 0 when k is out of range.
func Combinations(n, k int) int64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	return int64(combin.Binomial(n, k))
}

// Estimate samples uniform combinations from the whole number range and
// attributes each rejected sample to the first enabled filter, in priority
// order, that rejects it. scorer may be nil; when present it is applied last.
// Each enabled filter's share of the samples is then removed in turn from a
// running estimate that starts at C(range, size).
func (e *Estimator) Estimate(ctx context.Context, fc filter.Context, cfg models.FilterConfig, scorer domsvc.Scorer) (models.ReductionReport, error) {
	game := fc.Profile.Game
	initial := Combinations(game.Range, game.StandardSize)
	if initial == 0 {
		return models.ReductionReport{}, fmt.Errorf("invalid game shape %d/%d", game.StandardSize, game.Range)
	}

	eliminated := make(map[models.Filter]int)
	modelEliminated := 0
	numbers := make([]int, game.Range)
	for i := range numbers {
		numbers[i] = i + 1
	}
	for i := 0; i < e.samples; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return models.ReductionReport{}, err
			}
		}
		sample := e.sample(numbers, game.StandardSize)
		if f, failed := fc.FirstFailure(cfg, sample); failed {
			eliminated[f]++
			continue
		}
		if scorer != nil && jointScore(scorer, sample) < ModelThreshold {
			modelEliminated++
		}
	}

	report := models.ReductionReport{
		Game:         game.ID,
		Initial:      initial,
		Samples:      e.samples,
		ModelApplied: scorer != nil,
	}
	remaining := float64(initial)
	apply := func(title string, count int) {
		remaining -= remaining * (float64(count) / float64(e.samples))
		report.Steps = append(report.Steps, models.ReductionStep{Filter: title, Remaining: round(remaining)})
	}
	for _, f := range cfg.EnabledFilters() {
		apply(f.Title(), eliminated[f])
	}
	if scorer != nil {
		apply(modelStepTitle, modelEliminated)
	}
	report.Final = round(remaining)
	report.EliminationPercent = (1 - remaining/float64(initial)) * 100
	return report, nil
}

func (e *Estimator) sample(numbers []int, k int) []int {
	for i := 0; i < k; i++ {
		j := i + e.rng.IntN(len(numbers)-i)
		numbers[i], numbers[j] = numbers[j], numbers[i]
	}
	out := append([]int(nil), numbers[:k]...)
	sort.Ints(out)
	return out
}

func jointScore(scorer domsvc.Scorer, nums []int) float64 {
	p := 1.0
	for _, n := range nums {
		p *= scorer.Score(n)
	}
	return p
}

func round(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
