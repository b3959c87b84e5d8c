package ratelimit

import (
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	xhttp "MillionaireMaker/pkg/http"
)

// Limiter keeps one token bucket per key (client IP for the API).
type Limiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

func New(rps float64, burst int) *Limiter {
	return &Limiter{limiters: make(map[string]*rate.Limiter), rps: rps, burst: burst}
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[key]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[key]; ok {
		return lim
	}
	lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
	l.limiters[key] = lim
	return lim
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Middleware rejects requests over the client's budget with 429.
func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests, slow down"))
			}
			return next(c)
		}
	}
}
