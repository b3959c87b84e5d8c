package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"MillionaireMaker/internal/domain/models"
	drepo "MillionaireMaker/internal/domain/repository"
	"MillionaireMaker/internal/services/profile"
	applogger "MillionaireMaker/pkg/logger"
	"MillionaireMaker/pkg/util"
)

// Snapshot is a game's valid draw history and the profile computed from it.
type Snapshot struct {
	Game    models.GameProfile
	Draws   []models.Draw
	Profile *models.StatisticalProfile
}

// ProfileLoader reads draw history and computes profiles, reusing a cached
// profile while the history fingerprint is unchanged. Concurrent loads of the
// same game share one repository read.
type ProfileLoader struct {
	draws   drepo.DrawRepository
	cache   drepo.ProfileCache
	metrics drepo.Metrics
	l       *applogger.Logger
	group   singleflight.Group
	timeout time.Duration
}

// DefaultLoadTimeout bounds a shared history read once its callers have gone.
const DefaultLoadTimeout = 30 * time.Second

// NewProfileLoader creates a loader. cache may be nil.
func NewProfileLoader(draws drepo.DrawRepository, cache drepo.ProfileCache, metrics drepo.Metrics) *ProfileLoader {
	return &ProfileLoader{draws: draws, cache: cache, metrics: metrics, l: applogger.Nop(), timeout: DefaultLoadTimeout}
}

// SetTimeout overrides DefaultLoadTimeout.
func (p *ProfileLoader) SetTimeout(d time.Duration) {
	if d > 0 {
		p.timeout = d
	}
}

// SetLogger sets optional logger.
func (p *ProfileLoader) SetLogger(l *applogger.Logger) {
	if l != nil {
		p.l = l
	}
}

// Load resolves gameID and returns its current snapshot.
func (p *ProfileLoader) Load(ctx context.Context, gameID string) (*Snapshot, error) {
	game, err := models.LookupGame(gameID)
	if err != nil {
		return nil, err
	}
	// the shared read outlives any single caller; each caller still honours its own ctx
	ch := p.group.DoChan(string(game.ID), func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		return p.load(lctx, game)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (p *ProfileLoader) load(ctx context.Context, game models.GameProfile) (*Snapshot, error) {
	raw, err := p.draws.Fetch(ctx, game)
	if err != nil {
		p.metrics.RecordError("draw_fetch")
		return nil, fmt.Errorf("load %s history: %w", game.ID, err)
	}
	draws := profile.ValidDraws(game, raw)
	if dropped := len(raw) - len(draws); dropped > 0 {
		p.l.Debug("dropped invalid draws", applogger.String("game", string(game.ID)), applogger.Int("dropped", dropped))
	}

	fp := profile.Fingerprint(game, draws)
	if p.cache != nil {
		if prof, ok := p.cache.Get(ctx, game.ID, fp); ok {
			return &Snapshot{Game: game, Draws: draws, Profile: prof}, nil
		}
	}

	start := time.Now()
	prof := profile.Compute(game, draws)
	p.metrics.RecordLatency("profile", time.Since(start).Seconds())

	if p.cache != nil {
		if err := p.cache.Set(ctx, game.ID, fp, prof); err != nil {
			p.metrics.RecordError("profile_cache")
			p.l.Warn("profile cache write failed", applogger.String("game", string(game.ID)), applogger.Error(err))
		}
	}
	return &Snapshot{Game: game, Draws: draws, Profile: prof}, nil
}

// Invalidate drops the cached profile of a game.
func (p *ProfileLoader) Invalidate(ctx context.Context, game models.GameID) error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Invalidate(ctx, game)
}

// Latest returns the most recent valid draw, or the draw on date when it is non-zero.
func (s *Snapshot) Latest(date time.Time) (models.Draw, bool) {
	if len(s.Draws) == 0 {
		return models.Draw{}, false
	}
	if date.IsZero() {
		return s.Draws[len(s.Draws)-1], true
	}
	for i := len(s.Draws) - 1; i >= 0; i-- {
		if util.SameDay(s.Draws[i].Date, date) {
			return s.Draws[i], true
		}
	}
	return models.Draw{}, false
}
