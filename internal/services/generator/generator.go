package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/services/filter"
)

const (
	// DefaultMaxAttempts is the rejection-sampling budget per combination.
	DefaultMaxAttempts = 5000
	grandLookback      = 3
	ctxCheckInterval   = 256
)

// Generator rejection-samples combinations from a pool. Not safe for
// concurrent use because it owns its random source.
type Generator struct {
	rng         *rand.Rand
	maxAttempts int
}

type Option func(*Generator)

// WithMaxAttempts overrides the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

func New(rng *rand.Rand, opts ...Option) *Generator {
	g := &Generator{rng: rng, maxAttempts: DefaultMaxAttempts}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Result carries a combination and the number of attempts it took.
type Result struct {
	Combination models.Combination
	Attempts    int
}

// Generate draws combinations from pool until one passes every enabled filter
// or the attempt budget runs out (models.ErrNoValidCombination).
func (g *Generator) Generate(ctx context.Context, pool []int, cfg models.FilterConfig, fc filter.Context) (Result, error) {
	game := fc.Profile.Game
	k := game.StandardSize
	if len(pool) < k {
		return Result{}, fmt.Errorf("%w: %d numbers, need %d", models.ErrPoolTooSmall, len(pool), k)
	}
	scratch := make([]int, len(pool))
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if attempt%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Result{Attempts: attempt}, err
			}
		}
		main := g.sample(pool, scratch, k)
		if !fc.Accepts(cfg, main) {
			continue
		}
		combo := models.Combination{Main: main}
		if game.HasGrand() {
			grand := g.grandNumber(game.GrandRange, fc.History)
			combo.Grand = &grand
		}
		return Result{Combination: combo, Attempts: attempt}, nil
	}
	return Result{Attempts: g.maxAttempts}, fmt.Errorf("%w after %d attempts", models.ErrNoValidCombination, g.maxAttempts)
}

// GenerateBatch fills up to count slots. Slots that exhaust their budget are
// skipped and show up as Generated < Requested. Only context cancellation
// and a too-small pool abort the batch.
func (g *Generator) GenerateBatch(ctx context.Context, count int, pool []int, cfg models.FilterConfig, fc filter.Context) (models.BatchResult, error) {
	res := models.BatchResult{Requested: count}
	for i := 0; i < count; i++ {
		r, err := g.Generate(ctx, pool, cfg, fc)
		res.Attempts += r.Attempts
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, models.ErrPoolTooSmall) {
				return res, err
			}
			continue
		}
		res.Picks = append(res.Picks, r.Combination)
		res.Generated++
	}
	return res, nil
}

// sample picks k distinct pool members uniformly via a partial Fisher-Yates shuffle.
func (g *Generator) sample(pool, scratch []int, k int) []int {
	copy(scratch, pool)
	for i := 0; i < k; i++ {
		j := i + g.rng.IntN(len(scratch)-i)
		scratch[i], scratch[j] = scratch[j], scratch[i]
	}
	out := append([]int(nil), scratch[:k]...)
	sort.Ints(out)
	return out
}

// grandNumber picks uniformly from 1..grandRange, avoiding the grand numbers
// of the last three draws unless that leaves nothing.
func (g *Generator) grandNumber(grandRange int, history []models.Draw) int {
	recent := make(map[int]bool, grandLookback)
	for i := max(0, len(history)-grandLookback); i < len(history); i++ {
		if history[i].Grand != nil {
			recent[*history[i].Grand] = true
		}
	}
	var domain []int
	for n := 1; n <= grandRange; n++ {
		if !recent[n] {
			domain = append(domain, n)
		}
	}
	if len(domain) == 0 {
		for n := 1; n <= grandRange; n++ {
			domain = append(domain, n)
		}
	}
	return domain[g.rng.IntN(len(domain))]
}
