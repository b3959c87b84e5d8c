package generator

import (
	"context"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/services/filter"
	"MillionaireMaker/internal/services/pool"
	"MillionaireMaker/internal/services/profile"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func seeded(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }

func fullPool(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func emptyContext(t *testing.T, id string) (models.GameProfile, filter.Context) {
	t.Helper()
	g, err := models.LookupGame(id)
	require.NoError(t, err)
	return g, filter.NewContext(profile.Compute(g, nil), nil, now, models.DefaultFilterConfig())
}

func TestGenerateWithoutHistory(t *testing.T) {
	g, fc := emptyContext(t, "lotto649")
	cfg := models.DefaultFilterConfig()
	gen := New(seeded(1))

	for i := 0; i < 20; i++ {
		res, err := gen.Generate(context.Background(), fullPool(g.Range), cfg, fc)
		require.NoError(t, err)
		main := res.Combination.Main
		require.Len(t, main, g.StandardSize)
		assert.True(t, sort.IntsAreSorted(main))
		seen := map[int]bool{}
		for _, n := range main {
			assert.True(t, n >= 1 && n <= g.Range)
			assert.False(t, seen[n])
			seen[n] = true
		}
		assert.True(t, fc.Accepts(cfg, main))
		assert.Nil(t, res.Combination.Grand)
	}
}

// weeklyDraws returns n weekly draws of g ending a week before now.
func weeklyDraws(g models.GameProfile, n int, seed uint64) []models.Draw {
	rng := seeded(seed)
	out := make([]models.Draw, n)
	for i := range out {
		main := rng.Perm(g.Range)[:g.StandardSize]
		for j := range main {
			main[j]++
		}
		sort.Ints(main)
		d := models.Draw{Date: now.AddDate(0, 0, -7*(n-i)), Main: main}
		if g.HasGrand() {
			gr := rng.IntN(g.GrandRange) + 1
			d.Grand = &gr
		}
		out[i] = d
	}
	return out
}

func TestGenerateWithHistoryPassesDefaultFilters(t *testing.T) {
	for _, id := range []string{"lottoMax", "lotto649", "dailyGrand"} {
		t.Run(id, func(t *testing.T) {
			g, err := models.LookupGame(id)
			require.NoError(t, err)
			draws := weeklyDraws(g, 300, 21)
			prof := profile.Compute(g, draws)
			cfg := models.DefaultFilterConfig()
			fc := filter.NewContext(prof, draws, now, cfg)

			candidates, err := pool.Build(prof, draws, models.PoolDynamic, cfg.PoolSize, nil)
			require.NoError(t, err)
			inPool := make(map[int]bool, len(candidates))
			for _, n := range candidates {
				inPool[n] = true
			}

			batch, err := New(seeded(9)).GenerateBatch(context.Background(), 20, candidates, cfg, fc)
			require.NoError(t, err)
			require.NotZero(t, batch.Generated)
			require.Len(t, batch.Picks, batch.Generated)

			for _, c := range batch.Picks {
				require.Len(t, c.Main, g.StandardSize)
				assert.True(t, sort.IntsAreSorted(c.Main), "%v", c.Main)
				seen := make(map[int]bool, len(c.Main))
				for _, n := range c.Main {
					assert.True(t, n >= 1 && n <= g.Range, "%d out of range", n)
					assert.True(t, inPool[n], "%d outside the pool", n)
					assert.False(t, seen[n], "%d repeated", n)
					seen[n] = true
				}
				assert.True(t, fc.Accepts(cfg, c.Main), "%v fails %v", c.Main, fc.Failures(cfg, c.Main))
				if g.HasGrand() {
					require.NotNil(t, c.Grand)
					assert.True(t, *c.Grand >= 1 && *c.Grand <= g.GrandRange)
				} else {
					assert.Nil(t, c.Grand)
				}
			}
		})
	}
}

func TestGenerateIsReproducibleWithSeed(t *testing.T) {
	g, fc := emptyContext(t, "lottoMax")
	cfg := models.DefaultFilterConfig()

	a, err := New(seeded(42)).Generate(context.Background(), fullPool(g.Range), cfg, fc)
	require.NoError(t, err)
	b, err := New(seeded(42)).Generate(context.Background(), fullPool(g.Range), cfg, fc)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateRespectsPool(t *testing.T) {
	g, fc := emptyContext(t, "lotto649")
	cfg := models.DefaultFilterConfig()
	pool := []int{2, 9, 14, 21, 27, 33, 38, 44, 46, 49}

	res, err := New(seeded(7)).Generate(context.Background(), pool, cfg, fc)
	require.NoError(t, err)
	for _, n := range res.Combination.Main {
		assert.Contains(t, pool, n)
	}
	assert.Equal(t, g.StandardSize, len(res.Combination.Main))
}

func TestGenerateExhaustsBudget(t *testing.T) {
	_, fc := emptyContext(t, "lotto649")
	cfg := models.DefaultFilterConfig()

	res, err := New(seeded(3), WithMaxAttempts(50)).Generate(context.Background(), []int{1, 2, 3, 4, 5, 6}, cfg, fc)
	require.ErrorIs(t, err, models.ErrNoValidCombination)
	assert.Equal(t, 50, res.Attempts)
}

func TestGeneratePoolTooSmall(t *testing.T) {
	_, fc := emptyContext(t, "lotto649")
	_, err := New(seeded(3)).Generate(context.Background(), []int{1, 2, 3}, models.DefaultFilterConfig(), fc)
	assert.ErrorIs(t, err, models.ErrPoolTooSmall)
}

func TestGenerateHonoursCancellation(t *testing.T) {
	_, fc := emptyContext(t, "lotto649")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(seeded(3)).Generate(ctx, []int{1, 2, 3, 4, 5, 6}, models.DefaultFilterConfig(), fc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateBatchReportsShortfall(t *testing.T) {
	_, fc := emptyContext(t, "lotto649")
	cfg := models.DefaultFilterConfig()
	gen := New(seeded(5), WithMaxAttempts(20))

	res, err := gen.GenerateBatch(context.Background(), 3, []int{1, 2, 3, 4, 5, 6}, cfg, fc)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Requested)
	assert.Equal(t, 0, res.Generated)
	assert.True(t, res.Partial())

	cfg = models.FilterConfig{PoolSize: 6}
	res, err = gen.GenerateBatch(context.Background(), 3, []int{1, 2, 3, 4, 5, 6}, cfg, fc)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Generated)
	assert.False(t, res.Partial())
}

func TestGrandNumberAvoidsRecentDraws(t *testing.T) {
	g, err := models.LookupGame("dailyGrand")
	require.NoError(t, err)
	grand := func(v int) *int { return &v }
	history := []models.Draw{
		{Date: now.AddDate(0, 0, -40), Main: []int{1, 12, 23, 34, 45}, Grand: grand(4)},
		{Date: now.AddDate(0, 0, -30), Main: []int{2, 13, 24, 35, 46}, Grand: grand(1)},
		{Date: now.AddDate(0, 0, -20), Main: []int{3, 14, 25, 36, 47}, Grand: grand(2)},
		{Date: now.AddDate(0, 0, -10), Main: []int{4, 15, 26, 37, 48}, Grand: grand(3)},
	}
	fc := filter.NewContext(profile.Compute(g, history), history, now, models.DefaultFilterConfig())
	cfg := models.FilterConfig{}
	gen := New(seeded(11))

	for i := 0; i < 50; i++ {
		res, err := gen.Generate(context.Background(), fullPool(g.Range), cfg, fc)
		require.NoError(t, err)
		require.NotNil(t, res.Combination.Grand)
		v := *res.Combination.Grand
		assert.True(t, v >= 4 && v <= 7, "grand %d should avoid 1..3", v)
	}
}

func TestGrandNumberFallsBackToFullDomain(t *testing.T) {
	grand := func(v int) *int { return &v }
	history := []models.Draw{{Grand: grand(1)}, {Grand: grand(2)}}
	gen := New(seeded(9))
	for i := 0; i < 20; i++ {
		v := gen.grandNumber(2, history)
		assert.True(t, v == 1 || v == 2)
	}
}
