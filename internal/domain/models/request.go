package models

import (
	"fmt"
	"strings"
)

// Requests bound from HTTP by echo and validated by validator/v10.
// The game path parameter is kept out of the JSON body.

type GameRequest struct {
	Game string `param:"game" json:"-" validate:"required"`
}

// EngineRequest carries the filter and pool settings shared by every engine operation.
type EngineRequest struct {
	Game             string          `param:"game" json:"-" validate:"required"`
	Preset           string          `json:"preset" validate:"omitempty,oneof=default balanced strict hot cold minimal"`
	Filters          map[string]bool `json:"filters" validate:"omitempty,dive,keys,filter,endkeys"`
	PoolSize         int             `json:"pool_size" validate:"omitempty,min=5,max=50"`
	PoolStrategy     string          `json:"pool_strategy" validate:"omitempty,oneof=dynamic frequency model"`
	RecentSimilarity *float64        `json:"recent_similarity" validate:"omitempty,gt=0,lte=100"`
	OlderSimilarity  *float64        `json:"older_similarity" validate:"omitempty,gt=0,lte=100"`
}

// FilterConfig resolves the request against base: preset first, then
// explicit toggles, then pool and threshold overrides.
func (r EngineRequest) FilterConfig(base FilterConfig) (FilterConfig, error) {
	cfg := base
	if r.Preset != "" {
		p, err := Preset(r.Preset)
		if err != nil {
			return FilterConfig{}, err
		}
		for _, f := range AllFilters {
			cfg.SetEnabled(f, p.Enabled(f))
		}
		if name := strings.ToLower(r.Preset); name == "hot" || name == "cold" {
			cfg.PoolStrategy = PoolDynamic
		}
	}
	for key, on := range r.Filters {
		f, err := ParseFilter(key)
		if err != nil {
			return FilterConfig{}, err
		}
		cfg.SetEnabled(f, on)
	}
	if r.PoolSize > 0 {
		cfg.PoolSize = r.PoolSize
	}
	if r.PoolStrategy != "" {
		cfg.PoolStrategy = PoolStrategy(r.PoolStrategy)
	}
	if r.RecentSimilarity != nil {
		cfg.RecentSimilarity = *r.RecentSimilarity
	}
	if r.OlderSimilarity != nil {
		cfg.OlderSimilarity = *r.OlderSimilarity
	}
	switch cfg.PoolStrategy {
	case PoolDynamic, PoolFrequency, PoolModel:
	default:
		return FilterConfig{}, fmt.Errorf("%w: unknown pool strategy %q", ErrInvalidConfig, cfg.PoolStrategy)
	}
	return cfg, nil
}

type GenerateRequest struct {
	EngineRequest
	Count int `json:"count" default:"1" validate:"min=1,max=100"`
}

type AnalyzeRequest struct {
	EngineRequest
}

type AutoTuneRequest struct {
	EngineRequest
}

type ReductionRequest struct {
	EngineRequest
	Samples  int  `json:"samples" validate:"omitempty,min=100,max=200000"`
	UseModel bool `json:"use_model"`
}

// JobRequest enqueues a long-running operation.
type JobRequest struct {
	Kind string `param:"kind" json:"-" validate:"required,oneof=autotune reduction analyze"`
	ReductionRequest
}

type JobStatusRequest struct {
	ID string `param:"id" json:"-" validate:"required,uuid"`
}

// CheckRequest checks a ticket against the latest draw, or the draw on Date.
type CheckRequest struct {
	Game  string `param:"game" json:"-" validate:"required"`
	Main  []int  `json:"main" validate:"required,min=1,max=7,dive,min=1,max=50"`
	Grand *int   `json:"grand" validate:"omitempty,min=1,max=7"`
	Date  string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}
