package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"MillionaireMaker/internal/domain/models"
	drepo "MillionaireMaker/internal/domain/repository"
	domsvc "MillionaireMaker/internal/domain/service"
	"MillionaireMaker/internal/services/autotune"
	"MillionaireMaker/internal/services/filter"
	"MillionaireMaker/internal/services/generator"
	"MillionaireMaker/internal/services/pool"
	"MillionaireMaker/internal/services/reduction"
	applogger "MillionaireMaker/pkg/logger"
)

const (
	ReportReduction = "reduction"
	ReportAutoTune  = "autotune"
)

// EngineConfig holds the server-side defaults applied under every request.
type EngineConfig struct {
	Defaults         models.FilterConfig
	MaxAttempts      int
	ReductionSamples int
	MaxBatch         int
}

type EngineOption func(*Engine)

// WithClock overrides the time source for similarity windows.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithRandSource overrides how per-request random sources are created.
func WithRandSource(fn func() *rand.Rand) EngineOption {
	return func(e *Engine) { e.newRand = fn }
}

// Engine orchestrates the engine operations behind the API, the CLI and the job queue.
type Engine struct {
	loader  *ProfileLoader
	model   domsvc.ModelProvider
	reports drepo.ReportStore
	pub     drepo.Publisher
	metrics drepo.Metrics
	cfg     EngineConfig
	l       *applogger.Logger
	now     func() time.Time
	newRand func() *rand.Rand
}

// NewEngine creates an Engine. model, reports and pub may be nil.
func NewEngine(
	loader *ProfileLoader,
	model domsvc.ModelProvider,
	reports drepo.ReportStore,
	pub drepo.Publisher,
	metrics drepo.Metrics,
	cfg EngineConfig,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		loader:  loader,
		model:   model,
		reports: reports,
		pub:     pub,
		metrics: metrics,
		cfg:     cfg,
		l:       applogger.Nop(),
		now:     time.Now,
		newRand: func() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) },
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// SetLogger sets optional logger.
func (e *Engine) SetLogger(l *applogger.Logger) {
	if l != nil {
		e.l = l
	}
}

// Loader exposes the profile loader for ingestion and read endpoints.
func (e *Engine) Loader() *ProfileLoader { return e.loader }

// Health reports the model breaker state and report archive reachability.
// An open breaker or an unreachable archive degrades the service.
func (e *Engine) Health(ctx context.Context) models.HealthResponse {
	res := models.HealthResponse{Status: models.HealthOK, Model: "disabled", Reports: models.HealthOK}
	if st, ok := e.model.(domsvc.ModelStatus); ok && st.Enabled() {
		res.Model = st.State()
		if res.Model == "open" {
			res.Status = models.HealthDegraded
		}
	}
	if e.reports != nil {
		if err := e.reports.Health(ctx); err != nil {
			e.l.Warn("report store unhealthy", applogger.Error(err))
			res.Reports = err.Error()
			res.Status = models.HealthDegraded
		}
	}
	return res
}

// prepare loads the snapshot and resolves the request's filter configuration.
func (e *Engine) prepare(ctx context.Context, req models.EngineRequest) (*Snapshot, models.FilterConfig, error) {
	cfg, err := req.FilterConfig(e.cfg.Defaults)
	if err != nil {
		return nil, models.FilterConfig{}, err
	}
	snap, err := e.loader.Load(ctx, req.Game)
	if err != nil {
		return nil, models.FilterConfig{}, err
	}
	return snap, cfg, nil
}

// scorer asks the external model for scores. A nil provider is reported as unavailable.
func (e *Engine) scorer(ctx context.Context, snap *Snapshot) (domsvc.Scorer, error) {
	if e.model == nil {
		return nil, fmt.Errorf("no scoring model configured: %w", models.ErrExternalModelUnavailable)
	}
	s, err := e.model.Scorer(ctx, snap.Profile, snap.Draws)
	if err != nil {
		e.metrics.RecordError("model")
		return nil, err
	}
	return s, nil
}

// Generate produces up to req.Count combinations from the configured pool.
func (e *Engine) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	start := time.Now()
	defer func() { e.metrics.RecordLatency("generate", time.Since(start).Seconds()) }()

	snap, cfg, err := e.prepare(ctx, req.EngineRequest)
	if err != nil {
		return nil, err
	}
	requested := req.Count
	if requested <= 0 {
		requested = 1
	}
	count := requested
	if e.cfg.MaxBatch > 0 && count > e.cfg.MaxBatch {
		count = e.cfg.MaxBatch
	}

	var scorer domsvc.Scorer
	if cfg.PoolStrategy == models.PoolModel {
		if scorer, err = e.scorer(ctx, snap); err != nil {
			return nil, err
		}
	}
	candidates, err := pool.Build(snap.Profile, snap.Draws, cfg.PoolStrategy, cfg.PoolSize, scorer)
	if err != nil {
		e.metrics.RecordGenerationFailure(string(snap.Game.ID), failureReason(err))
		return nil, err
	}

	fc := filter.NewContext(snap.Profile, snap.Draws, e.now(), cfg)
	gen := generator.New(e.newRand(), generator.WithMaxAttempts(e.cfg.MaxAttempts))
	batch, err := gen.GenerateBatch(ctx, count, candidates, cfg, fc)
	if err != nil {
		e.metrics.RecordGenerationFailure(string(snap.Game.ID), failureReason(err))
		return nil, err
	}

	game := string(snap.Game.ID)
	e.metrics.RecordGenerated(game, batch.Generated)
	e.metrics.RecordAttempts(game, batch.Attempts/count)
	if batch.Partial() {
		e.metrics.RecordGenerationFailure(game, failureReason(models.ErrNoValidCombination))
	}
	capped := count < requested
	if capped {
		e.metrics.RecordGenerationFailure(game, "batch_capped")
	}
	// Requested stays the caller's count so slots cut by MaxBatch show as a shortfall.
	batch.Requested = requested
	if batch.Partial() {
		e.l.Warn("partial batch",
			applogger.String("game", game),
			applogger.Int("generated", batch.Generated),
			applogger.Int("requested", batch.Requested),
			applogger.Bool("capped", capped),
		)
	}
	if batch.Generated > 0 && e.pub != nil {
		if err := e.pub.PublishPicks(ctx, snap.Game.ID, batch); err != nil {
			e.metrics.RecordError("publish_picks")
			e.l.Warn("publish picks failed", applogger.String("game", game), applogger.Error(err))
		}
	}

	picks := make([]models.CombinationResponse, 0, len(batch.Picks))
	for _, c := range batch.Picks {
		picks = append(picks, models.NewCombinationResponse(c))
	}
	return &models.GenerateResponse{
		Game:      snap.Game.ID,
		Picks:     picks,
		Generated: batch.Generated,
		Requested: batch.Requested,
		Partial:   batch.Partial(),
		Pool:      candidates,
		Strategy:  cfg.PoolStrategy,
	}, nil
}

// Analyze back-tests the most recent draws against the resolved configuration.
func (e *Engine) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.PastDrawReportResponse, error) {
	start := time.Now()
	defer func() { e.metrics.RecordLatency("analyze", time.Since(start).Seconds()) }()

	snap, cfg, err := e.prepare(ctx, req.EngineRequest)
	if err != nil {
		return nil, err
	}
	report, err := autotune.New(autotune.WithClock(e.now)).AnalyzePastDraws(snap.Profile, snap.Draws, cfg)
	if err != nil {
		return nil, err
	}
	res := models.NewPastDrawReportResponse(report)
	return &res, nil
}

// AutoTune searches the pool size and calibrates the filter toggles.
func (e *Engine) AutoTune(ctx context.Context, req *models.AutoTuneRequest) (*models.AutoTuneResponse, error) {
	start := time.Now()
	defer func() { e.metrics.RecordLatency("autotune", time.Since(start).Seconds()) }()

	snap, cfg, err := e.prepare(ctx, req.EngineRequest)
	if err != nil {
		return nil, err
	}
	result, err := autotune.New(autotune.WithClock(e.now)).Tune(snap.Profile, snap.Draws, cfg)
	if err != nil {
		return nil, err
	}

	if e.reports != nil {
		if err := e.reports.SaveAutoTune(ctx, result); err != nil {
			e.metrics.RecordError("report_store")
			e.l.Warn("archive autotune failed", applogger.String("game", string(result.Game)), applogger.Error(err))
		}
	}
	res := models.NewAutoTuneResponse(result)
	e.l.Info("autotune complete",
		applogger.String("game", string(result.Game)),
		applogger.Int("success_count", result.SuccessCount),
		applogger.Strings("disabled", res.DisabledFilters),
		applogger.Any("config", res.Config),
	)
	e.publishReport(ctx, result.Game, ReportAutoTune, res)
	return &res, nil
}

// Reduction estimates how far the enabled filters shrink the combination space.
// When the model is requested but unavailable the estimate runs without it.
func (e *Engine) Reduction(ctx context.Context, req *models.ReductionRequest) (*models.ReductionResponse, error) {
	start := time.Now()
	defer func() { e.metrics.RecordLatency("reduction", time.Since(start).Seconds()) }()

	snap, cfg, err := e.prepare(ctx, req.EngineRequest)
	if err != nil {
		return nil, err
	}

	var scorer domsvc.Scorer
	if req.UseModel {
		scorer, err = e.scorer(ctx, snap)
		if err != nil {
			if !errors.Is(err, models.ErrExternalModelUnavailable) {
				return nil, err
			}
			e.l.Warn("reduction without model step", applogger.String("game", string(snap.Game.ID)), applogger.Error(err))
			scorer = nil
		}
	}

	samples := req.Samples
	if samples <= 0 {
		samples = e.cfg.ReductionSamples
	}
	fc := filter.NewContext(snap.Profile, snap.Draws, e.now(), cfg)
	report, err := reduction.New(e.newRand(), reduction.WithSamples(samples)).Estimate(ctx, fc, cfg, scorer)
	if err != nil {
		return nil, err
	}

	if e.reports != nil {
		if err := e.reports.SaveReduction(ctx, report); err != nil {
			e.metrics.RecordError("report_store")
			e.l.Warn("archive reduction failed", applogger.String("game", string(report.Game)), applogger.Error(err))
		}
	}
	res := models.NewReductionResponse(report)
	e.publishReport(ctx, report.Game, ReportReduction, res)
	return &res, nil
}

func (e *Engine) publishReport(ctx context.Context, game models.GameID, kind string, report interface{}) {
	if e.pub == nil {
		return
	}
	if err := e.pub.PublishReport(ctx, game, kind, report); err != nil {
		e.metrics.RecordError("publish_report")
		e.l.Warn("publish report failed", applogger.String("game", string(game)), applogger.String("kind", kind), applogger.Error(err))
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrPoolTooSmall):
		return "pool_too_small"
	case errors.Is(err, models.ErrNoValidCombination):
		return "no_valid_combination"
	case errors.Is(err, models.ErrExternalModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}
