package models

import (
	"encoding/json"
	"time"
)

// JSON views of engine results, shared by the HTTP API, Kafka events and job results.

type CombinationResponse struct {
	Main  []int `json:"main"`
	Grand *int  `json:"grand,omitempty"`
}

type GenerateResponse struct {
	Game      GameID                `json:"game"`
	Picks     []CombinationResponse `json:"picks"`
	Generated int                   `json:"generated"`
	Requested int                   `json:"requested"`
	Partial   bool                  `json:"partial"`
	Pool      []int                 `json:"pool"`
	Strategy  PoolStrategy          `json:"pool_strategy"`
}

// DrawResponse keeps the original backend's contract: grand and bonus are null when absent.
type DrawResponse struct {
	Date  string `json:"date"`
	Main  []int  `json:"main"`
	Grand *int   `json:"grand"`
	Bonus *int   `json:"bonus"`
}

type ReductionStepResponse struct {
	Filter    string `json:"filter"`
	Remaining int64  `json:"remaining"`
}

type ReductionResponse struct {
	Game               GameID                  `json:"game"`
	Initial            int64                   `json:"initial"`
	Steps              []ReductionStepResponse `json:"steps"`
	Final              int64                   `json:"final"`
	EliminationPercent float64                 `json:"elimination_percent"`
	Samples            int                     `json:"samples"`
	ModelApplied       bool                    `json:"model_applied"`
}

type FilterConfigResponse struct {
	Filters          map[string]bool `json:"filters"`
	RecentSimilarity float64         `json:"recent_similarity"`
	OlderSimilarity  float64         `json:"older_similarity"`
	PoolSize         int             `json:"pool_size"`
	PoolStrategy     PoolStrategy    `json:"pool_strategy"`
}

type AutoTuneResponse struct {
	Game            GameID               `json:"game"`
	PoolSize        int                  `json:"pool_size"`
	SuccessCount    int                  `json:"success_count"`
	BacktestDraws   int                  `json:"backtest_draws"`
	HitTarget       int                  `json:"hit_target"`
	QualifyingDraws int                  `json:"qualifying_draws"`
	DisabledFilters []string             `json:"disabled_filters"`
	Tickets         int                  `json:"recommended_tickets"`
	Config          FilterConfigResponse `json:"config"`
}

type DrawAnalysisResponse struct {
	Date             string   `json:"date"`
	Main             []int    `json:"main"`
	PoolSize         int      `json:"pool_size"`
	Hits             int      `json:"hits"`
	HitRate          float64  `json:"hit_rate"`
	RecentSimilarity float64  `json:"recent_similarity"`
	OlderSimilarity  float64  `json:"older_similarity"`
	HitsToWin        int      `json:"hits_to_win"`
	ProbAtLeast      float64  `json:"probability_at_least"`
	FailedFilters    []string `json:"failed_filters"`
	Passed           bool     `json:"passed"`
}

type PastDrawReportResponse struct {
	Game  GameID                 `json:"game"`
	Draws []DrawAnalysisResponse `json:"draws"`
}

type ProfileResponse struct {
	Game               GameID          `json:"game"`
	DrawCount          int             `json:"draw_count"`
	Sum                *StatResponse   `json:"sum"`
	DigitSum           *StatResponse   `json:"digit_sum"`
	Delta              *StatResponse   `json:"delta"`
	RankSum            *StatResponse   `json:"rank_sum"`
	Frequencies        []int           `json:"frequencies"`
	PositionalBounds   []BoundResponse `json:"positional_bounds"`
	PositionalAverages []float64       `json:"positional_averages"`
	AvgGaps            []float64       `json:"avg_gaps"`
	CurrentGaps        []int           `json:"current_gaps"`
	LastDigits         []float64       `json:"last_digits"`
	Hot                []int           `json:"hot"`
	Cold               []int           `json:"cold"`
	DynamicPool        []int           `json:"dynamic_pool"`
}

type StatResponse struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

type BoundResponse struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type PrizeTierResponse struct {
	Label string `json:"label"`
	Prize string `json:"prize"`
}

type GameResponse struct {
	ID           GameID              `json:"id"`
	StandardSize int                 `json:"standard_size"`
	Range        int                 `json:"range"`
	GrandRange   int                 `json:"grand_range,omitempty"`
	HasGrand     bool                `json:"has_grand"`
	Prizes       []PrizeTierResponse `json:"prizes"`
}

type FilterInfoResponse struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HealthResponse summarises the optional dependencies of the engine.
type HealthResponse struct {
	Status  string `json:"status"`
	Model   string `json:"model"`
	Reports string `json:"reports"`
}

// Healthy reports whether every dependency is usable.
func (h HealthResponse) Healthy() bool { return h.Status == HealthOK }

const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

type GamesResponse struct {
	Games   []GameResponse       `json:"games"`
	Filters []FilterInfoResponse `json:"filters"`
	Presets []string             `json:"presets"`
}

type CheckResponse struct {
	Game       GameID              `json:"game"`
	Draw       DrawResponse        `json:"draw"`
	Ticket     CombinationResponse `json:"ticket"`
	Matches    int                 `json:"matches"`
	BonusMatch bool                `json:"bonus_match"`
	GrandMatch bool                `json:"grand_match"`
	Won        bool                `json:"won"`
	Tier       string              `json:"tier"`
	Prize      string              `json:"prize"`

	// FailedFilters lists the default filters the ticket would not pass.
	FailedFilters []string `json:"failed_filters"`
}

type JobAcceptedResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Game GameID `json:"game"`
}

type JobStatusResponse struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	State     string          `json:"state"`
	Attempts  int             `json:"attempts"`
	Error     string          `json:"error,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewCombinationResponse(c Combination) CombinationResponse {
	return CombinationResponse{Main: c.Main, Grand: c.Grand}
}

func NewDrawResponse(d Draw) DrawResponse {
	return DrawResponse{Date: d.Date.Format(time.DateOnly), Main: d.Main, Grand: d.Grand, Bonus: d.Bonus}
}

func NewReductionResponse(r ReductionReport) ReductionResponse {
	steps := make([]ReductionStepResponse, len(r.Steps))
	for i, s := range r.Steps {
		steps[i] = ReductionStepResponse{Filter: s.Filter, Remaining: s.Remaining}
	}
	return ReductionResponse{
		Game:               r.Game,
		Initial:            r.Initial,
		Steps:              steps,
		Final:              r.Final,
		EliminationPercent: r.EliminationPercent,
		Samples:            r.Samples,
		ModelApplied:       r.ModelApplied,
	}
}

func NewFilterConfigResponse(c FilterConfig) FilterConfigResponse {
	filters := make(map[string]bool, len(AllFilters))
	for _, f := range AllFilters {
		filters[f.String()] = c.Enabled(f)
	}
	return FilterConfigResponse{
		Filters:          filters,
		RecentSimilarity: c.RecentSimilarity,
		OlderSimilarity:  c.OlderSimilarity,
		PoolSize:         c.PoolSize,
		PoolStrategy:     c.PoolStrategy,
	}
}

func NewAutoTuneResponse(r AutoTuneResult) AutoTuneResponse {
	disabled := make([]string, len(r.Disabled))
	for i, f := range r.Disabled {
		disabled[i] = f.String()
	}
	return AutoTuneResponse{
		Game:            r.Game,
		PoolSize:        r.PoolSize,
		SuccessCount:    r.SuccessCount,
		BacktestDraws:   r.BacktestDraws,
		HitTarget:       r.HitTarget,
		QualifyingDraws: r.QualifyingDraws,
		DisabledFilters: disabled,
		Tickets:         r.Tickets,
		Config:          NewFilterConfigResponse(r.Config),
	}
}

func NewPastDrawReportResponse(r PastDrawReport) PastDrawReportResponse {
	draws := make([]DrawAnalysisResponse, len(r.Draws))
	for i, d := range r.Draws {
		failed := d.FailedFilters
		if failed == nil {
			failed = []string{}
		}
		draws[i] = DrawAnalysisResponse{
			Date:             d.Date.Format(time.DateOnly),
			Main:             d.Main,
			PoolSize:         d.PoolSize,
			Hits:             d.Hits,
			HitRate:          d.HitRate,
			RecentSimilarity: d.RecentSimilarity,
			OlderSimilarity:  d.OlderSimilarity,
			HitsToWin:        d.HitsToWin,
			ProbAtLeast:      d.ProbAtLeast,
			FailedFilters:    failed,
			Passed:           d.Passed(),
		}
	}
	return PastDrawReportResponse{Game: r.Game, Draws: draws}
}

func NewProfileResponse(p *StatisticalProfile) ProfileResponse {
	var bounds []BoundResponse
	for _, b := range p.PositionalBounds {
		bounds = append(bounds, BoundResponse{Min: b.Min, Max: b.Max})
	}
	return ProfileResponse{
		Game:               p.Game.ID,
		DrawCount:          p.DrawCount,
		Sum:                stat(p.Sum),
		DigitSum:           stat(p.DigitSum),
		Delta:              stat(p.Delta),
		RankSum:            stat(p.RankSum),
		Frequencies:        p.Frequencies,
		PositionalBounds:   bounds,
		PositionalAverages: p.PositionalAverages,
		AvgGaps:            p.AvgGaps,
		CurrentGaps:        p.CurrentGaps,
		LastDigits:         p.LastDigits,
		Hot:                p.Hot,
		Cold:               p.Cold,
		DynamicPool:        p.DynamicPool,
	}
}

func stat(s *MeanStd) *StatResponse {
	if s == nil {
		return nil
	}
	return &StatResponse{Mean: s.Mean, StdDev: s.StdDev}
}
