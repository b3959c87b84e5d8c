package features

import (
	"fmt"
	"slices"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/services/profile"
)

// Count is the number of features extracted per number.
const Count = 11

const recentWindow = 20

// Names lists the feature columns in extraction order.
var Names = [Count]string{
	"freq_ratio",
	"last_seen_ratio",
	"recent_freq_ratio",
	"parity",
	"high",
	"last_digit",
	"positional_avg",
	"in_last_draw",
	"avg_pair_score",
	"avg_gap",
	"digital_root",
}

// Extract builds one feature row per number 1..Range from the valid,
// date-sorted draws and their profile. Row i describes number i+1.
func Extract(p *models.StatisticalProfile, draws []models.Draw) ([][]float64, error) {
	if len(draws) == 0 {
		return nil, fmt.Errorf("%w: feature extraction needs at least one draw", models.ErrInsufficientHistory)
	}
	game := p.Game
	total := float64(len(draws))
	recent := draws[max(0, len(draws)-recentWindow):]
	recentFreq := profile.Frequencies(game.Range, recent)
	lastDraw := draws[len(draws)-1].Main

	rows := make([][]float64, game.Range)
	for n := 1; n <= game.Range; n++ {
		var high float64
		if float64(n) > float64(game.Range)/2 {
			high = 1
		}
		var inLast float64
		if slices.Contains(lastDraw, n) {
			inLast = 1
		}
		rows[n-1] = []float64{
			float64(p.Frequencies[n]) / total,
			lastSeenRatio(draws, n),
			float64(recentFreq[n]) / float64(len(recent)),
			float64(n % 2),
			high,
			float64(n%10) / 9,
			p.PositionalAverages[n] / float64(game.StandardSize),
			inLast,
			avgPairScore(p.Pairing, n) / total,
			p.AvgGaps[n] / total,
			float64(profile.DigitalRoot(n)) / 9,
		}
	}
	return rows, nil
}

// lastSeenRatio is the number of draws since n last appeared, counted from
// the newest draw (0 = in the newest), over the draw count; 1 if never seen.
func lastSeenRatio(draws []models.Draw, n int) float64 {
	for i := len(draws) - 1; i >= 0; i-- {
		if slices.Contains(draws[i].Main, n) {
			return float64(len(draws)-1-i) / float64(len(draws))
		}
	}
	return 1
}

// avgPairScore is the mean co-occurrence count over the partners n has actually paired with.
func avgPairScore(pairing [][]int, n int) float64 {
	if n >= len(pairing) {
		return 0
	}
	total, partners := 0, 0
	for m, c := range pairing[n] {
		if m != n && c > 0 {
			total += c
			partners++
		}
	}
	if partners == 0 {
		return 0
	}
	return float64(total) / float64(partners)
}
