package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/domain/repository"
)

// ReportSchema creates the archive tables.
var ReportSchema = []string{
	`CREATE TABLE IF NOT EXISTS reduction_reports (
	game LowCardinality(String),
	created_at DateTime64(3),
	initial UInt64,
	final UInt64,
	elimination_percent Float64,
	samples UInt32,
	model_applied UInt8,
	steps String
) ENGINE = MergeTree ORDER BY (game, created_at)`,
	`CREATE TABLE IF NOT EXISTS autotune_runs (
	game LowCardinality(String),
	created_at DateTime64(3),
	pool_size UInt16,
	success_count UInt16,
	backtest_draws UInt16,
	tickets UInt16,
	disabled_filters Array(String)
) ENGINE = MergeTree ORDER BY (game, created_at)`,
}

// ClickHouseReportStore appends reports to ClickHouse.
type ClickHouseReportStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.ReportStore = (*ClickHouseReportStore)(nil)

func NewClickHouseReportStore(db *sql.DB) *ClickHouseReportStore {
	return &ClickHouseReportStore{db: db, now: time.Now}
}

func (s *ClickHouseReportStore) SaveReduction(ctx context.Context, r models.ReductionReport) error {
	steps, err := json.Marshal(models.NewReductionResponse(r).Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	modelApplied := uint8(0)
	if r.ModelApplied {
		modelApplied = 1
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO reduction_reports (game, created_at, initial, final, elimination_percent, samples, model_applied, steps) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		string(r.Game), s.now().UTC(), uint64(r.Initial), uint64(r.Final), r.EliminationPercent, uint32(r.Samples), modelApplied, string(steps),
	)
	if err != nil {
		return fmt.Errorf("insert reduction report: %w", err)
	}
	return nil
}

func (s *ClickHouseReportStore) SaveAutoTune(ctx context.Context, r models.AutoTuneResult) error {
	disabled := make([]string, len(r.Disabled))
	for i, f := range r.Disabled {
		disabled[i] = f.String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO autotune_runs (game, created_at, pool_size, success_count, backtest_draws, tickets, disabled_filters) VALUES (?, ?, ?, ?, ?, ?, ?)",
		string(r.Game), s.now().UTC(), uint16(r.PoolSize), uint16(r.SuccessCount), uint16(r.BacktestDraws), uint16(r.Tickets), disabled,
	)
	if err != nil {
		return fmt.Errorf("insert autotune run: %w", err)
	}
	return nil
}

func (s *ClickHouseReportStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// NopReportStore discards reports. Used when ClickHouse is disabled.
type NopReportStore struct{}

var _ repository.ReportStore = NopReportStore{}

func (NopReportStore) SaveReduction(context.Context, models.ReductionReport) error { return nil }
func (NopReportStore) SaveAutoTune(context.Context, models.AutoTuneResult) error  { return nil }
func (NopReportStore) Health(context.Context) error                               { return nil }
