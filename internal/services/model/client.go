package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"MillionaireMaker/internal/domain/models"
	domsvc "MillionaireMaker/internal/domain/service"
	"MillionaireMaker/internal/services/features"
	xhttp "MillionaireMaker/pkg/http"
	applogger "MillionaireMaker/pkg/logger"
)

const scorePath = "/v1/score"

type Option func(*Client)

// BreakerSettings controls when the circuit opens and how long it stays open.
type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithBreaker(s BreakerSettings) Option {
	return func(c *Client) { c.breakerSettings = s }
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.l = l }
}

// Client calls an external scoring service that returns one probability per number.
type Client struct {
	baseURL         string
	timeout         time.Duration
	breakerSettings BreakerSettings
	http            *xhttp.Client
	breaker         *gobreaker.CircuitBreaker
	l               *applogger.Logger
}

type scoreRequest struct {
	Game     models.GameID `json:"game"`
	Range    int           `json:"range"`
	Features [][]float64   `json:"features"`
}

type scoreResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 5 * time.Second,
		breakerSettings: BreakerSettings{
			MaxRequests:         1,
			Interval:            time.Minute,
			Timeout:             30 * time.Second,
			ConsecutiveFailures: 3,
		},
		l: applogger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.http = xhttp.NewClient(xhttp.WithTimeout(c.timeout))

	trip := c.breakerSettings.ConsecutiveFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "model",
		MaxRequests: c.breakerSettings.MaxRequests,
		Interval:    c.breakerSettings.Interval,
		Timeout:     c.breakerSettings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.l.Warn("model breaker state change",
				applogger.String("breaker", name),
				applogger.String("from", from.String()),
				applogger.String("to", to.String()),
			)
		},
	})
	return c
}

// Enabled reports whether a base URL is configured.
func (c *Client) Enabled() bool { return c != nil && c.baseURL != "" }

// State exposes the breaker state for health output.
func (c *Client) State() string { return c.breaker.State().String() }

// Scorer extracts per-number features and asks the service for probabilities.
// Every failure is reported as ErrExternalModelUnavailable.
func (c *Client) Scorer(ctx context.Context, p *models.StatisticalProfile, draws []models.Draw) (domsvc.Scorer, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%w: no base url configured", models.ErrExternalModelUnavailable)
	}
	feats, err := features.Extract(p, draws)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExternalModelUnavailable, err)
	}

	req := scoreRequest{Game: p.Game.ID, Range: p.Game.Range, Features: feats}
	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		var resp scoreResponse
		if err := c.http.PostJSON(ctx, c.baseURL+scorePath, req, &resp); err != nil {
			return nil, err
		}
		return resp.Probabilities, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.l.Debug("model call short-circuited", applogger.String("game", string(p.Game.ID)))
		} else {
			c.l.Warn("model call failed",
				applogger.String("game", string(p.Game.ID)),
				applogger.Duration("duration_ms", time.Since(start)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrExternalModelUnavailable, err)
	}

	probs := out.([]float64)
	table, err := newScoreTable(probs, p.Game.Range)
	if err != nil {
		c.l.Warn("model response rejected", applogger.String("game", string(p.Game.ID)), applogger.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrExternalModelUnavailable, err)
	}
	return table, nil
}

var (
	_ domsvc.ModelProvider = (*Client)(nil)
	_ domsvc.ModelStatus   = (*Client)(nil)
)
