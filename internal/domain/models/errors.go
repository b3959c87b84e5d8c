package models

import "errors"

var (
	// ErrInsufficientHistory means fewer valid draws exist than an operation needs.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrPoolTooSmall means the candidate pool holds fewer numbers than a combination needs.
	ErrPoolTooSmall = errors.New("pool too small")
	// ErrNoValidCombination means the attempt budget ran out before a combination passed every filter.
	ErrNoValidCombination = errors.New("no valid combination")
	// ErrExternalModelUnavailable means the scoring model is missing or returned unusable output.
	ErrExternalModelUnavailable = errors.New("external model unavailable")
	ErrUnknownGame              = errors.New("unknown game")
	// ErrInvalidConfig means a preset, filter key or pool strategy is not recognised.
	ErrInvalidConfig = errors.New("invalid filter configuration")
)
