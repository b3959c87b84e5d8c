package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/services/filter"
	"MillionaireMaker/internal/services/payout"
	"MillionaireMaker/pkg/util"
)

var (
	// ErrDrawNotFound means no valid draw exists for the requested date.
	ErrDrawNotFound = errors.New("draw not found")
	// ErrInvalidTicket means a checked ticket does not fit the game's shape.
	ErrInvalidTicket = errors.New("invalid ticket")
)

// Games lists the supported games with their prize tables, the filters and the presets.
func (e *Engine) Games() *models.GamesResponse { return Catalog() }

// Catalog lists the supported games with their prize tables, the filters and the presets.
func Catalog() *models.GamesResponse {
	res := &models.GamesResponse{Presets: models.PresetNames}
	for _, g := range models.Games() {
		tiers := payout.Table(g.ID)
		prizes := make([]models.PrizeTierResponse, len(tiers))
		for i, t := range tiers {
			prizes[i] = models.PrizeTierResponse{Label: t.Label, Prize: t.Prize}
		}
		res.Games = append(res.Games, models.GameResponse{
			ID:           g.ID,
			StandardSize: g.StandardSize,
			Range:        g.Range,
			GrandRange:   g.GrandRange,
			HasGrand:     g.HasGrand(),
			Prizes:       prizes,
		})
	}
	for _, f := range models.AllFilters {
		res.Filters = append(res.Filters, models.FilterInfoResponse{
			Key:         f.String(),
			Title:       f.Title(),
			Description: f.Description(),
		})
	}
	return res
}

// Draws returns the valid draw history of a game, oldest first.
func (e *Engine) Draws(ctx context.Context, req *models.GameRequest) ([]models.DrawResponse, error) {
	snap, err := e.loader.Load(ctx, req.Game)
	if err != nil {
		return nil, err
	}
	out := make([]models.DrawResponse, len(snap.Draws))
	for i, d := range snap.Draws {
		out[i] = models.NewDrawResponse(d)
	}
	return out, nil
}

// Profile returns the statistical profile summary of a game.
func (e *Engine) Profile(ctx context.Context, req *models.GameRequest) (*models.ProfileResponse, error) {
	snap, err := e.loader.Load(ctx, req.Game)
	if err != nil {
		return nil, err
	}
	res := models.NewProfileResponse(snap.Profile)
	return &res, nil
}

// Check evaluates a ticket against the latest draw or the draw on req.Date.
func (e *Engine) Check(ctx context.Context, req *models.CheckRequest) (*models.CheckResponse, error) {
	snap, err := e.loader.Load(ctx, req.Game)
	if err != nil {
		return nil, err
	}
	game := snap.Game
	if len(req.Main) != game.StandardSize {
		return nil, fmt.Errorf("%w: %s tickets need %d numbers, got %d", ErrInvalidTicket, game.ID, game.StandardSize, len(req.Main))
	}

	nums := slices.Clone(req.Main)
	slices.Sort(nums)
	for i, n := range nums {
		if n < 1 || n > game.Range || (i > 0 && nums[i-1] == n) {
			return nil, fmt.Errorf("%w: numbers must be distinct within 1..%d", ErrInvalidTicket, game.Range)
		}
	}

	var date time.Time
	if req.Date != "" {
		if date, err = util.ParseDate(req.Date); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
		}
	}
	draw, ok := snap.Latest(date)
	if !ok {
		if date.IsZero() {
			return nil, fmt.Errorf("%w: %s has no draws", models.ErrInsufficientHistory, game.ID)
		}
		return nil, fmt.Errorf("%w: %s on %s", ErrDrawNotFound, game.ID, date.Format(time.DateOnly))
	}

	ticket := models.Combination{Main: nums, Grand: req.Grand}
	if !game.HasGrand() {
		ticket.Grand = nil
	}
	result := payout.Check(game, ticket, draw)
	res := &models.CheckResponse{
		Game:       game.ID,
		Draw:       models.NewDrawResponse(draw),
		Ticket:     models.NewCombinationResponse(ticket),
		Matches:    result.Matches,
		BonusMatch: result.BonusMatch,
		GrandMatch: result.GrandMatch,
		Won:        result.Won(),
		Tier:       "no prize",
	}
	fc := filter.NewContext(snap.Profile, snap.Draws, e.now(), e.cfg.Defaults)
	res.FailedFilters = make([]string, 0)
	for _, f := range fc.Failures(e.cfg.Defaults, nums) {
		res.FailedFilters = append(res.FailedFilters, f.Title())
	}
	if result.Won() {
		res.Tier = result.Tier.Label
		res.Prize = result.Tier.Prize
	}
	return res, nil
}
