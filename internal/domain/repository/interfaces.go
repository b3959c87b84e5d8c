package repository

import (
	"context"

	"MillionaireMaker/internal/domain/models"
)

// DrawRepository reads and writes a game's draw history.
type DrawRepository interface {
	Fetch(ctx context.Context, game models.GameProfile) ([]models.Draw, error)
	Upsert(ctx context.Context, game models.GameProfile, d models.Draw) error
}

// ReportStore archives reduction and auto-tune outcomes.
type ReportStore interface {
	SaveReduction(ctx context.Context, r models.ReductionReport) error
	SaveAutoTune(ctx context.Context, r models.AutoTuneResult) error
	Health(ctx context.Context) error
}

// Publisher emits generated picks and report summaries downstream.
type Publisher interface {
	PublishPicks(ctx context.Context, game models.GameID, batch models.BatchResult) error
	PublishReport(ctx context.Context, game models.GameID, kind string, report interface{}) error
	Close() error
}

// ProfileCache stores computed profiles keyed by game and history fingerprint.
type ProfileCache interface {
	Get(ctx context.Context, game models.GameID, fingerprint string) (*models.StatisticalProfile, bool)
	Set(ctx context.Context, game models.GameID, fingerprint string, p *models.StatisticalProfile) error
	Invalidate(ctx context.Context, game models.GameID) error
}

type Metrics interface {
	RecordGenerated(game string, n int)
	RecordGenerationFailure(game, reason string)
	RecordAttempts(game string, attempts int)
	RecordLatency(op string, seconds float64)
	RecordError(component string)
	RecordDrawIngested(game string)
}
