package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/pkg/queue"
)

const (
	JobAutoTune  = "autotune"
	JobReduction = "reduction"
	JobAnalyze   = "analyze"
)

// jobPayload is what gets queued. The game travels separately because
// request structs keep it out of their JSON form.
type jobPayload struct {
	Game    string                  `json:"game"`
	Request models.ReductionRequest `json:"request"`
}

// Jobs enqueues engine operations on the job queue and reports their status.
type Jobs struct {
	q queue.QueueService
}

func NewJobs(q queue.QueueService) *Jobs {
	return &Jobs{q: q}
}

// Enqueue validates the game and queues the operation named by req.Kind.
func (j *Jobs) Enqueue(ctx context.Context, req *models.JobRequest) (*models.JobAcceptedResponse, error) {
	game, err := models.LookupGame(req.Game)
	if err != nil {
		return nil, err
	}
	id, err := j.q.Enqueue(ctx, req.Kind, jobPayload{Game: string(game.ID), Request: req.ReductionRequest})
	if err != nil {
		return nil, fmt.Errorf("enqueue %s job: %w", req.Kind, err)
	}
	return &models.JobAcceptedResponse{ID: id, Kind: req.Kind, Game: game.ID}, nil
}

// Status returns the current record of a job, queue.ErrJobNotFound when unknown.
func (j *Jobs) Status(ctx context.Context, req *models.JobStatusRequest) (*models.JobStatusResponse, error) {
	st, err := j.q.Status(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &models.JobStatusResponse{
		ID:        st.ID,
		Kind:      st.Type,
		State:     string(st.State),
		Attempts:  st.Attempts,
		Error:     st.Error,
		Result:    st.Result,
		UpdatedAt: st.UpdatedAt,
	}, nil
}

// EngineJob runs one engine operation from the queue.
type EngineJob struct {
	kind   string
	engine *Engine
}

var _ queue.Job = (*EngineJob)(nil)

// NewEngineJobs returns a job for every queueable operation.
func NewEngineJobs(e *Engine) []queue.Job {
	return []queue.Job{
		&EngineJob{kind: JobAutoTune, engine: e},
		&EngineJob{kind: JobReduction, engine: e},
		&EngineJob{kind: JobAnalyze, engine: e},
	}
}

func (j *EngineJob) Name() string { return j.kind + "_job" }

func (j *EngineJob) Type() string { return j.kind }

func (j *EngineJob) Handle(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	p, err := queue.DecodePayload[jobPayload](raw)
	if err != nil {
		return nil, err
	}
	req := p.Request
	req.Game = p.Game

	switch j.kind {
	case JobAutoTune:
		return j.engine.AutoTune(ctx, &models.AutoTuneRequest{EngineRequest: req.EngineRequest})
	case JobReduction:
		return j.engine.Reduction(ctx, &req)
	case JobAnalyze:
		return j.engine.Analyze(ctx, &models.AnalyzeRequest{EngineRequest: req.EngineRequest})
	default:
		return nil, fmt.Errorf("unknown job kind %q", j.kind)
	}
}
