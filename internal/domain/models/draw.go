package models

import "time"

// Draw is one historical outcome of a game. Main is sorted ascending once validated.
// Note: no transport (json/sql) concerns here.
type Draw struct {
	Date  time.Time
	Main  []int
	Grand *int
	Bonus *int
}

// Combination is a generated ticket. Never mutated after creation.
type Combination struct {
	Main  []int
	Grand *int
}

// BatchResult carries the outcome of a multi-ticket generation request.
// Generated < Requested when some slots exhausted their attempt budget.
type BatchResult struct {
	Picks     []Combination
	Generated int
	Requested int
	Attempts  int // total sampling attempts across all slots
}

// Partial reports whether fewer combinations were produced than requested.
func (b BatchResult) Partial() bool { return b.Generated < b.Requested }
