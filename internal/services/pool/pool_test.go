package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/services/profile"
)

type tableScorer map[int]float64

func (s tableScorer) Score(n int) float64 { return s[n] }

func history() []models.Draw {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Draw{
		{Date: base, Main: []int{1, 2, 3, 4, 5, 6}},
		{Date: base.AddDate(0, 0, 3), Main: []int{1, 2, 3, 7, 8, 9}},
	}
}

func game(t *testing.T) models.GameProfile {
	t.Helper()
	g, err := models.LookupGame("lotto649")
	require.NoError(t, err)
	return g
}

func TestFrequencyPoolPrefersLeastFrequent(t *testing.T) {
	g := game(t)
	got := Frequency(g.Range, history(), 8)
	assert.Equal(t, []int{10, 11, 12, 13, 14, 15, 16, 17}, got)

	all := Frequency(g.Range, history(), g.Range)
	assert.Equal(t, []int{1, 2, 3}, all[len(all)-3:])
}

func TestDynamicPoolTakesPrefix(t *testing.T) {
	g := game(t)
	p := profile.Compute(g, history())
	got := Dynamic(p, 10)
	assert.Equal(t, p.DynamicPool[:10], got)
}

func TestModelPool(t *testing.T) {
	g := game(t)
	s := tableScorer{7: 0.9, 3: 0.8, 40: 0.8, 12: 0.1}
	got := Model(g.Range, s, 4)
	assert.Equal(t, []int{7, 3, 40, 12}, got)
}

func TestBuild(t *testing.T) {
	g := game(t)
	p := profile.Compute(g, history())

	out, err := Build(p, history(), models.PoolFrequency, 30, nil)
	require.NoError(t, err)
	assert.Len(t, out, 30)

	out, err = Build(p, history(), models.PoolDynamic, 100, nil)
	require.NoError(t, err)
	assert.Len(t, out, g.Range)

	_, err = Build(p, history(), models.PoolDynamic, 5, nil)
	assert.ErrorIs(t, err, models.ErrPoolTooSmall)

	_, err = Build(p, history(), models.PoolModel, 30, nil)
	assert.ErrorIs(t, err, models.ErrExternalModelUnavailable)

	_, err = Build(p, history(), "weird", 30, nil)
	assert.Error(t, err)
}

func TestHits(t *testing.T) {
	assert.Equal(t, 2, Hits([]int{1, 2, 3}, []int{2, 3, 9}))
	assert.Equal(t, 0, Hits(nil, []int{2, 3, 9}))
}
