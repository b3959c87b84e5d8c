package repository

import (
	"context"
	"errors"
	"time"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/domain/repository"
	"MillionaireMaker/pkg/cache"
	applogger "MillionaireMaker/pkg/logger"
)

type cachedProfile struct {
	Fingerprint string
	Profile     *models.StatisticalProfile
}

// ProfileCache keeps one profile per game; a stale fingerprint is a miss.
type ProfileCache struct {
	c   cache.Service
	ttl time.Duration
	l   *applogger.Logger
}

var _ repository.ProfileCache = (*ProfileCache)(nil)

func NewProfileCache(c cache.Service, ttl time.Duration) *ProfileCache {
	return &ProfileCache{c: c, ttl: ttl}
}

// SetLogger sets optional logger.
func (p *ProfileCache) SetLogger(l *applogger.Logger) { p.l = l }

func (p *ProfileCache) Get(ctx context.Context, game models.GameID, fingerprint string) (*models.StatisticalProfile, bool) {
	var entry cachedProfile
	if err := p.c.Get(ctx, profileKey(game), &entry); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && p.l != nil {
			p.l.Warn("profile cache read failed", applogger.String("game", string(game)), applogger.Error(err))
		}
		return nil, false
	}
	if entry.Fingerprint != fingerprint || entry.Profile == nil {
		return nil, false
	}
	return entry.Profile, true
}

func (p *ProfileCache) Set(ctx context.Context, game models.GameID, fingerprint string, prof *models.StatisticalProfile) error {
	return p.c.Set(ctx, profileKey(game), cachedProfile{Fingerprint: fingerprint, Profile: prof}, p.ttl)
}

func (p *ProfileCache) Invalidate(ctx context.Context, game models.GameID) error {
	return p.c.Delete(ctx, profileKey(game))
}

func profileKey(game models.GameID) string {
	return cache.Key("profile", string(game))
}
