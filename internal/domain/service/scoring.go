package service

import (
	"context"

	"MillionaireMaker/internal/domain/models"
)

// Scorer returns a probability in [0,1] that n appears in the next draw.
type Scorer interface {
	Score(n int) float64
}

// ModelProvider obtains a Scorer for a game from an external scoring model.
// Implementations return an error wrapping models.ErrExternalModelUnavailable
// when the model cannot produce scores.
type ModelProvider interface {
	Scorer(ctx context.Context, p *models.StatisticalProfile, draws []models.Draw) (Scorer, error)
}

// ModelStatus is implemented by providers that can describe their availability.
type ModelStatus interface {
	Enabled() bool
	State() string
}
