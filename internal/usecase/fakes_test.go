package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"MillionaireMaker/internal/domain/models"
	domsvc "MillionaireMaker/internal/domain/service"
	"MillionaireMaker/internal/repository"
	"MillionaireMaker/pkg/cache"
	"MillionaireMaker/pkg/metrics"
	"MillionaireMaker/pkg/queue"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func seeded(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed*17+3)) }

// history returns n weekly draws ending one week before now.
func history(game models.GameProfile, n int, seed uint64) []models.Draw {
	rng := seeded(seed)
	out := make([]models.Draw, n)
	for i := range out {
		perm := rng.Perm(game.Range)[:game.StandardSize]
		main := make([]int, len(perm))
		for j, v := range perm {
			main[j] = v + 1
		}
		sort.Ints(main)
		d := models.Draw{Date: now.AddDate(0, 0, -7*(n-i)), Main: main}
		if game.HasGrand() {
			g := rng.IntN(game.GrandRange) + 1
			d.Grand = &g
		} else {
			b := rng.IntN(game.Range) + 1
			d.Bonus = &b
		}
		out[i] = d
	}
	return out
}

func mustGame(t *testing.T, id string) models.GameProfile {
	t.Helper()
	g, err := models.LookupGame(id)
	require.NoError(t, err)
	return g
}

type fakeDraws struct {
	mu      sync.Mutex
	draws   map[models.GameID][]models.Draw
	err     error
	fetches int
	upserts []models.Draw
}

func newFakeDraws() *fakeDraws {
	return &fakeDraws{draws: make(map[models.GameID][]models.Draw)}
}

func (f *fakeDraws) Fetch(_ context.Context, game models.GameProfile) ([]models.Draw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Draw(nil), f.draws[game.ID]...), nil
}

func (f *fakeDraws) Upsert(_ context.Context, game models.GameProfile, d models.Draw) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, d)
	f.draws[game.ID] = append(f.draws[game.ID], d)
	return nil
}

type fakeReports struct {
	reductions []models.ReductionReport
	tunes      []models.AutoTuneResult
	err        error
}

func (f *fakeReports) SaveReduction(_ context.Context, r models.ReductionReport) error {
	f.reductions = append(f.reductions, r)
	return f.err
}

func (f *fakeReports) SaveAutoTune(_ context.Context, r models.AutoTuneResult) error {
	f.tunes = append(f.tunes, r)
	return f.err
}

func (f *fakeReports) Health(context.Context) error { return f.err }

type fakePublisher struct {
	picks   []models.BatchResult
	reports []string
}

func (f *fakePublisher) PublishPicks(_ context.Context, _ models.GameID, b models.BatchResult) error {
	f.picks = append(f.picks, b)
	return nil
}

func (f *fakePublisher) PublishReport(_ context.Context, _ models.GameID, kind string, _ interface{}) error {
	f.reports = append(f.reports, kind)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type constScorer float64

func (c constScorer) Score(int) float64 { return float64(c) }

type fakeModel struct {
	scorer domsvc.Scorer
	err    error
}

func (f fakeModel) Scorer(context.Context, *models.StatisticalProfile, []models.Draw) (domsvc.Scorer, error) {
	return f.scorer, f.err
}

type fakeQueue struct {
	msgType string
	payload json.RawMessage
	status  map[string]*queue.Status
}

func (f *fakeQueue) Enqueue(_ context.Context, msgType string, payload interface{}) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	f.msgType, f.payload = msgType, b
	return "7f1c1f8e-5d1f-4c55-9a55-0e4a3c1b2d10", nil
}

func (f *fakeQueue) Status(_ context.Context, id string) (*queue.Status, error) {
	if st, ok := f.status[id]; ok {
		return st, nil
	}
	return nil, queue.ErrJobNotFound
}

type fixture struct {
	draws   *fakeDraws
	reports *fakeReports
	pub     *fakePublisher
	loader  *ProfileLoader
	engine  *Engine
}

func newFixture(t *testing.T, model domsvc.ModelProvider) *fixture {
	t.Helper()
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })

	f := &fixture{draws: newFakeDraws(), reports: &fakeReports{}, pub: &fakePublisher{}}
	rec := metrics.New()
	f.loader = NewProfileLoader(f.draws, repository.NewProfileCache(mem, time.Hour), rec)
	seed := uint64(0)
	f.engine = NewEngine(f.loader, model, f.reports, f.pub, rec, EngineConfig{
		Defaults:         models.DefaultFilterConfig(),
		MaxAttempts:      5000,
		ReductionSamples: 500,
		MaxBatch:         10,
	},
		WithClock(func() time.Time { return now }),
		WithRandSource(func() *rand.Rand { seed++; return seeded(seed) }),
	)
	return f
}

var errBoom = errors.New("boom")
