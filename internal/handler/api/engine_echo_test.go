package api

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/service/ratelimit"
	"MillionaireMaker/internal/usecase"
	"MillionaireMaker/pkg/metrics"
	"MillionaireMaker/pkg/queue"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

type memDraws map[models.GameID][]models.Draw

func (m memDraws) Fetch(_ context.Context, g models.GameProfile) ([]models.Draw, error) {
	return m[g.ID], nil
}

func (m memDraws) Upsert(_ context.Context, g models.GameProfile, d models.Draw) error {
	m[g.ID] = append(m[g.ID], d)
	return nil
}

func weekly(game models.GameProfile, n int) []models.Draw {
	rng := rand.New(rand.NewPCG(uint64(n), 99))
	out := make([]models.Draw, n)
	for i := range out {
		main := rng.Perm(game.Range)[:game.StandardSize]
		for j := range main {
			main[j]++
		}
		sort.Ints(main)
		bonus := rng.IntN(game.Range) + 1
		out[i] = models.Draw{Date: now.AddDate(0, 0, -7*(n-i)), Main: main, Bonus: &bonus}
	}
	return out
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type stubQueue struct{ status map[string]*queue.Status }

func (q *stubQueue) Enqueue(context.Context, string, interface{}) (string, error) {
	return "0b6c3a52-3f0e-4f4e-8d2b-6a3f1f0f9c11", nil
}

func (q *stubQueue) Status(_ context.Context, id string) (*queue.Status, error) {
	if st, ok := q.status[id]; ok {
		return st, nil
	}
	return nil, queue.ErrJobNotFound
}

func newServer(t *testing.T, rl *ratelimit.Limiter) *echo.Echo {
	t.Helper()
	lotto649, err := models.LookupGame("lotto649")
	require.NoError(t, err)
	draws := memDraws{lotto649.ID: weekly(lotto649, 30)}

	rec := metrics.New()
	loader := usecase.NewProfileLoader(draws, nil, rec)
	engine := usecase.NewEngine(loader, nil, nil, nil, rec, usecase.EngineConfig{
		Defaults:         models.DefaultFilterConfig(),
		MaxAttempts:      2000,
		ReductionSamples: 200,
		MaxBatch:         10,
	}, usecase.WithClock(func() time.Time { return now }))

	e := echo.New()
	NewEngineHandler(nil, engine, rl).RegisterRoutes(e)
	NewJobsHandler(nil, usecase.NewJobs(&stubQueue{status: map[string]*queue.Status{
		"5d0a4c1e-2b7f-4c8a-9e3d-1f2a3b4c5d6e": {ID: "5d0a4c1e-2b7f-4c8a-9e3d-1f2a3b4c5d6e", Type: "analyze", State: queue.StateRunning},
	}})).RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func errorCode(t *testing.T, env envelope) string {
	t.Helper()
	var errs []struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	require.NotEmpty(t, errs)
	return errs[0].Code
}

const noFilters = `"filters":{"arithmetic":false,"sequential":false,"balance":false,"sum":false,"digit_sum":false,"rank_sum":false,"positional":false,"similarity":false,"delta":false,"last_digit":false,"consecutive":false,"number_group":false}`

func TestHealthEndpoint(t *testing.T) {
	e := newServer(t, nil)
	rec, env := do(e, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res models.HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.HealthOK, res.Status)
	assert.Equal(t, "disabled", res.Model)
}

func TestGames(t *testing.T) {
	e := newServer(t, nil)
	rec, env := do(e, http.MethodGet, "/api/games", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.GamesResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Len(t, res.Games, 3)
	assert.Len(t, res.Filters, 12)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderCacheControl))
}

func TestData(t *testing.T) {
	e := newServer(t, nil)
	rec, env := do(e, http.MethodGet, "/api/data/lotto649", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var draws []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &draws))
	require.Len(t, draws, 30)
	assert.Contains(t, draws[0], "grand", "absent grand is null, not omitted")
	assert.Nil(t, draws[0]["grand"])

	rec, env = do(e, http.MethodGet, "/api/data/keno", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ERR_UNKNOWN_GAME", errorCode(t, env))
}

func TestProfile(t *testing.T) {
	e := newServer(t, nil)
	rec, env := do(e, http.MethodGet, "/api/profile/lotto649", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.ProfileResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 30, res.DrawCount)
	assert.Len(t, res.DynamicPool, 49)
}

func TestGenerate(t *testing.T) {
	e := newServer(t, nil)
	rec, env := do(e, http.MethodPost, "/api/generate/lotto649", `{"count":3,"pool_size":20,`+noFilters+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res models.GenerateResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 3, res.Requested)
	assert.Equal(t, 3, res.Generated)
	assert.Len(t, res.Pool, 20)
	assert.Len(t, res.Picks, 3)
}

func TestGenerateReportsCappedBatch(t *testing.T) {
	e := newServer(t, nil)
	rec, env := do(e, http.MethodPost, "/api/generate/lotto649", `{"count":25,"pool_size":20,`+noFilters+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res models.GenerateResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 25, res.Requested)
	assert.Equal(t, 10, res.Generated)
	assert.True(t, res.Partial)
}

func TestGenerateDefaultsToOnePick(t *testing.T) {
	e := newServer(t, nil)
	rec, env := do(e, http.MethodPost, "/api/generate/lotto649", `{`+noFilters+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res models.GenerateResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.Requested)
}

func TestGenerateValidation(t *testing.T) {
	e := newServer(t, nil)
	cases := map[string]string{
		"unknown filter":   `{"filters":{"horoscope":true}}`,
		"count too large":  `{"count":500}`,
		"bad strategy":     `{"pool_strategy":"random"}`,
		"bad threshold":    `{"recent_similarity":0}`,
		"pool size small":  `{"pool_size":2}`,
		"unknown preset":   `{"preset":"lucky"}`,
		"malformed body":   `{"count":`,
		"wrong field type": `{"count":"three"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _ := do(e, http.MethodPost, "/api/generate/lotto649", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	e := newServer(t, nil)

	rec, env := do(e, http.MethodPost, "/api/generate/lotto649", `{"pool_strategy":"model"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "ERR_MODEL_UNAVAILABLE", errorCode(t, env))

	rec, _ = do(e, http.MethodPost, "/api/generate/lottoMax", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code, "an empty history still yields the full dynamic pool")

	rec, env = do(e, http.MethodPost, "/api/generate/lottoMax", `{"pool_size":6}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "ERR_POOL_TOO_SMALL", errorCode(t, env))
}

func TestAutoTuneNeedsHistory(t *testing.T) {
	e := newServer(t, nil)
	rec, env := do(e, http.MethodPost, "/api/autotune/lottoMax", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "ERR_INSUFFICIENT_HISTORY", errorCode(t, env))

	rec, _ = do(e, http.MethodPost, "/api/autotune/lotto649", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAnalyzeAndReduction(t *testing.T) {
	e := newServer(t, nil)
	rec, env := do(e, http.MethodPost, "/api/analyze/lotto649", `{"pool_size":25}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report models.PastDrawReportResponse
	require.NoError(t, json.Unmarshal(env.Data, &report))
	require.Len(t, report.Draws, 10)
	assert.Equal(t, 25, report.Draws[0].PoolSize)

	rec, env = do(e, http.MethodPost, "/api/reduction/lotto649", `{"samples":300,"use_model":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var red models.ReductionResponse
	require.NoError(t, json.Unmarshal(env.Data, &red))
	assert.False(t, red.ModelApplied, "an unavailable model only drops the AI step")
	assert.Equal(t, 300, red.Samples)
}

func TestCheck(t *testing.T) {
	e := newServer(t, nil)
	rec, env := do(e, http.MethodPost, "/api/check/lotto649", `{"main":[1,2,3,4,5,6]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res models.CheckResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, now.AddDate(0, 0, -7).Format(time.DateOnly), res.Draw.Date)

	rec, env = do(e, http.MethodPost, "/api/check/lotto649", `{"main":[1,2,3]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ERR_INVALID_TICKET", errorCode(t, env))

	rec, _ = do(e, http.MethodPost, "/api/check/lotto649", `{"main":[1,2,3,4,5,6],"date":"1990-01-01"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(e, http.MethodPost, "/api/check/lotto649", `{"main":[1,2,3,4,5,6],"date":"01/01/1990"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeavyEndpointsAreRateLimited(t *testing.T) {
	e := newServer(t, ratelimit.New(0.001, 1))
	rec, _ := do(e, http.MethodPost, "/api/analyze/lotto649", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, env := do(e, http.MethodPost, "/api/analyze/lotto649", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "ERR_RATE_LIMITED", errorCode(t, env))

	rec, _ = do(e, http.MethodGet, "/api/games", "")
	assert.Equal(t, http.StatusOK, rec.Code, "read endpoints are not limited")
}

func TestJobs(t *testing.T) {
	e := newServer(t, nil)

	rec, env := do(e, http.MethodPost, "/api/jobs/reduction/lotto649", `{"samples":1000}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var accepted models.JobAcceptedResponse
	require.NoError(t, json.Unmarshal(env.Data, &accepted))
	assert.Equal(t, "reduction", accepted.Kind)
	assert.Equal(t, "/api/jobs/"+accepted.ID, rec.Header().Get(echo.HeaderLocation))

	rec, _ = do(e, http.MethodPost, "/api/jobs/generate/lotto649", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(e, http.MethodGet, "/api/jobs/5d0a4c1e-2b7f-4c8a-9e3d-1f2a3b4c5d6e", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st models.JobStatusResponse
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, "running", st.State)

	rec, _ = do(e, http.MethodGet, "/api/jobs/9f8e7d6c-5b4a-4321-8fed-cba987654321", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(e, http.MethodGet, "/api/jobs/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
