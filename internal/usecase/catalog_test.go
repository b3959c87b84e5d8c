package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/pkg/queue"
)

func TestGames(t *testing.T) {
	f := newFixture(t, nil)
	res := f.engine.Games()

	require.Len(t, res.Games, 3)
	assert.Equal(t, models.GameDailyGrand, res.Games[0].ID)
	assert.True(t, res.Games[0].HasGrand)
	assert.Len(t, res.Games[0].Prizes, 9)
	assert.Len(t, res.Filters, len(models.AllFilters))
	assert.Equal(t, "arithmetic", res.Filters[0].Key)
	assert.NotEmpty(t, res.Filters[0].Description)
	assert.Contains(t, res.Presets, "balanced")
}

func TestDrawsAndProfile(t *testing.T) {
	f := newFixture(t, nil)
	g := mustGame(t, "lottoMax")
	f.draws.draws[g.ID] = history(g, 12, 20)

	draws, err := f.engine.Draws(context.Background(), &models.GameRequest{Game: "lottomax"})
	require.NoError(t, err)
	require.Len(t, draws, 12)
	assert.Equal(t, now.AddDate(0, 0, -84).Format(time.DateOnly), draws[0].Date)
	assert.NotNil(t, draws[0].Bonus)
	assert.Nil(t, draws[0].Grand)

	prof, err := f.engine.Profile(context.Background(), &models.GameRequest{Game: "lottoMax"})
	require.NoError(t, err)
	assert.Equal(t, 12, prof.DrawCount)
	assert.NotNil(t, prof.Sum)
	assert.Len(t, prof.DynamicPool, 50)
}

func TestCheckLatestDraw(t *testing.T) {
	f := newFixture(t, nil)
	g := mustGame(t, "lotto649")
	draws := history(g, 5, 21)
	f.draws.draws[g.ID] = draws
	latest := draws[len(draws)-1]

	res, err := f.engine.Check(context.Background(), &models.CheckRequest{Game: "lotto649", Main: latest.Main})
	require.NoError(t, err)
	assert.True(t, res.Won)
	assert.Equal(t, 6, res.Matches)
	assert.Equal(t, "6/6", res.Tier)
	assert.Equal(t, latest.Date.Format(time.DateOnly), res.Draw.Date)
	assert.NotNil(t, res.FailedFilters)

	_, err = f.engine.Check(context.Background(), &models.CheckRequest{Game: "lotto649", Main: []int{1, 1, 2, 3, 4, 5}})
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestCheckDatedDraw(t *testing.T) {
	f := newFixture(t, nil)
	g := mustGame(t, "dailyGrand")
	draws := history(g, 5, 22)
	f.draws.draws[g.ID] = draws
	first := draws[0]

	miss := []int{}
	for n := 1; len(miss) < 5; n++ {
		if !contains(first.Main, n) {
			miss = append(miss, n)
		}
	}
	res, err := f.engine.Check(context.Background(), &models.CheckRequest{
		Game:  "dailyGrand",
		Main:  miss,
		Grand: first.Grand,
		Date:  first.Date.Format(time.DateOnly),
	})
	require.NoError(t, err)
	assert.True(t, res.GrandMatch)
	assert.Equal(t, "0/5 + Grand Number", res.Tier)
	assert.Equal(t, "Free Play", res.Prize)

	_, err = f.engine.Check(context.Background(), &models.CheckRequest{Game: "dailyGrand", Main: miss, Date: "1999-01-01"})
	assert.ErrorIs(t, err, ErrDrawNotFound)

	_, err = f.engine.Check(context.Background(), &models.CheckRequest{Game: "dailyGrand", Main: []int{1, 2, 3}})
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestCheckWithoutHistory(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.engine.Check(context.Background(), &models.CheckRequest{Game: "lotto649", Main: []int{1, 2, 3, 4, 5, 6}})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)
}

func contains(nums []int, n int) bool {
	for _, v := range nums {
		if v == n {
			return true
		}
	}
	return false
}

func TestJobsEnqueueAndRun(t *testing.T) {
	f := newFixture(t, nil)
	g := mustGame(t, "lotto649")
	f.draws.draws[g.ID] = history(g, 30, 23)

	q := &fakeQueue{}
	jobs := NewJobs(q)
	req := &models.JobRequest{Kind: JobReduction}
	req.Game = "LOTTO649"
	req.Samples = 200
	req.Filters = map[string]bool{"balance": true}
	accepted, err := jobs.Enqueue(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.GameLotto649, accepted.Game)
	assert.Equal(t, JobReduction, q.msgType)

	var job queue.Job
	for _, j := range NewEngineJobs(f.engine) {
		if j.Type() == q.msgType {
			job = j
		}
	}
	require.NotNil(t, job)
	out, err := job.Handle(context.Background(), q.payload)
	require.NoError(t, err)
	res, ok := out.(*models.ReductionResponse)
	require.True(t, ok)
	assert.Equal(t, 200, res.Samples)
	assert.Equal(t, models.GameLotto649, res.Game)
}

func TestJobsEnqueueUnknownGame(t *testing.T) {
	jobs := NewJobs(&fakeQueue{})
	req := &models.JobRequest{Kind: JobAutoTune}
	req.Game = "keno"
	_, err := jobs.Enqueue(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrUnknownGame)
}

func TestJobsStatus(t *testing.T) {
	q := &fakeQueue{status: map[string]*queue.Status{
		"a": {ID: "a", Type: JobAnalyze, State: queue.StateDone, Attempts: 1, Result: json.RawMessage(`{"game":"lotto649"}`)},
	}}
	jobs := NewJobs(q)

	st, err := jobs.Status(context.Background(), &models.JobStatusRequest{ID: "a"})
	require.NoError(t, err)
	assert.Equal(t, "done", st.State)
	assert.Equal(t, JobAnalyze, st.Kind)
	assert.JSONEq(t, `{"game":"lotto649"}`, string(st.Result))

	_, err = jobs.Status(context.Background(), &models.JobStatusRequest{ID: "b"})
	assert.ErrorIs(t, err, queue.ErrJobNotFound)
}
