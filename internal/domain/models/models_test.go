package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func TestFilterConfigDefaultsPassThrough(t *testing.T) {
	base := DefaultFilterConfig()
	cfg, err := EngineRequest{Game: "lotto649"}.FilterConfig(base)
	require.NoError(t, err)
	assert.Equal(t, base, cfg)
}

func TestFilterConfigPresetThenOverrides(t *testing.T) {
	req := EngineRequest{
		Preset:           "hot",
		Filters:          map[string]bool{"balance": true, "similarity": false},
		PoolSize:         18,
		RecentSimilarity: fp(40),
	}
	base := DefaultFilterConfig()
	base.PoolStrategy = PoolFrequency

	cfg, err := req.FilterConfig(base)
	require.NoError(t, err)

	assert.Equal(t, PoolDynamic, cfg.PoolStrategy, "hot selects the dynamic pool")
	assert.True(t, cfg.Balance, "explicit toggle beats the preset")
	assert.False(t, cfg.Similarity)
	assert.False(t, cfg.Sum)
	assert.True(t, cfg.Consecutive)
	assert.Equal(t, 18, cfg.PoolSize)
	assert.Equal(t, 40.0, cfg.RecentSimilarity)
	assert.Equal(t, DefaultOlderSimilarity, cfg.OlderSimilarity)
	assert.True(t, base.Sum, "base is not modified")
}

func TestFilterConfigExplicitStrategyBeatsPreset(t *testing.T) {
	cfg, err := EngineRequest{Preset: "cold", PoolStrategy: "model"}.FilterConfig(DefaultFilterConfig())
	require.NoError(t, err)
	assert.Equal(t, PoolModel, cfg.PoolStrategy)
}

func TestFilterConfigErrors(t *testing.T) {
	_, err := EngineRequest{Preset: "lucky"}.FilterConfig(DefaultFilterConfig())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = EngineRequest{Filters: map[string]bool{"horoscope": true}}.FilterConfig(DefaultFilterConfig())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = EngineRequest{PoolStrategy: "random"}.FilterConfig(DefaultFilterConfig())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseFilterRoundTrip(t *testing.T) {
	for _, f := range AllFilters {
		got, err := ParseFilter(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
		assert.NotEmpty(t, f.Title())
		assert.NotEmpty(t, f.Description())
	}
	got, err := ParseFilter(" Digit_Sum ")
	require.NoError(t, err)
	assert.Equal(t, FilterDigitSum, got)
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames {
		cfg, err := Preset(name)
		require.NoError(t, err, name)
		assert.True(t, cfg.Arithmetic, name)
		assert.True(t, cfg.NumberGroup, name)
	}
	strict, _ := Preset("strict")
	assert.Len(t, strict.EnabledFilters(), len(AllFilters))
}

func TestLookupGame(t *testing.T) {
	g, err := LookupGame("DailyGrand")
	require.NoError(t, err)
	assert.Equal(t, 5, g.StandardSize)
	assert.Equal(t, 3, g.HitTarget())
	assert.Equal(t, 2, g.HitsToWin())

	g, err = LookupGame("lottomax")
	require.NoError(t, err)
	assert.Equal(t, GameLottoMax, g.ID)

	_, err = LookupGame("keno")
	assert.True(t, errors.Is(err, ErrUnknownGame))
	assert.Len(t, Games(), 3)
}

func TestBatchPartial(t *testing.T) {
	assert.True(t, BatchResult{Generated: 2, Requested: 3}.Partial())
	assert.False(t, BatchResult{Generated: 3, Requested: 3}.Partial())
}
