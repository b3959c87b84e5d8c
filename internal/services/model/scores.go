package model

import (
	"fmt"
	"math"
)

// scoreTable holds probabilities indexed by number-1.
type scoreTable []float64

func newScoreTable(probs []float64, rangeMax int) (scoreTable, error) {
	if len(probs) != rangeMax {
		return nil, fmt.Errorf("expected %d probabilities, got %d", rangeMax, len(probs))
	}
	for i, v := range probs {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return nil, fmt.Errorf("probability for %d out of range: %v", i+1, v)
		}
	}
	return scoreTable(append([]float64(nil), probs...)), nil
}

func (t scoreTable) Score(n int) float64 {
	if n < 1 || n > len(t) {
		return 0
	}
	return t[n-1]
}
