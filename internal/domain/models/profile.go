package models

// MeanStd is the mean and population standard deviation of a per-draw scalar.
type MeanStd struct {
	Mean   float64
	StdDev float64
}

// Bound is an inclusive integer interval.
type Bound struct {
	Min int
	Max int
}

// StatisticalProfile holds every aggregate derived from a game's valid draws.
// Per-number slices are indexed by the number itself (index 0 unused).
// Nil pointers and nil slices mark statistics that need more history than is available.
type StatisticalProfile struct {
	Game      GameProfile
	DrawCount int

	Sum      *MeanStd
	DigitSum *MeanStd
	Delta    *MeanStd
	RankSum  *MeanStd

	Frequencies []int
	RankMap     []int // number -> rank, 1 = most frequent

	PositionalBounds   []Bound   // per sorted position
	PositionalAverages []float64 // mean 1-indexed position per number, 0 if never drawn

	Pairing [][]int

	AvgGaps     []float64
	CurrentGaps []int

	LastDigits []float64 // fraction of drawn numbers ending in 0..9

	Hot  []int
	Cold []int

	DynamicPool []int
}

// Rank returns the rank of n, or the game's range when n is unranked.
func (p *StatisticalProfile) Rank(n int) int {
	if n <= 0 || n >= len(p.RankMap) || p.RankMap[n] == 0 {
		return p.Game.Range
	}
	return p.RankMap[n]
}
