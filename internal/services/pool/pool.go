package pool

import (
	"fmt"
	"sort"

	"MillionaireMaker/internal/domain/models"
	domsvc "MillionaireMaker/internal/domain/service"
	"MillionaireMaker/internal/services/profile"
)

// Build returns the candidate pool for strategy truncated to size.
// scorer is only consulted by the model strategy and may be nil otherwise.
func Build(p *models.StatisticalProfile, draws []models.Draw, strategy models.PoolStrategy, size int, scorer domsvc.Scorer) ([]int, error) {
	var out []int
	switch strategy {
	case models.PoolDynamic, "":
		out = Dynamic(p, size)
	case models.PoolFrequency:
		out = Frequency(p.Game.Range, draws, size)
	case models.PoolModel:
		if scorer == nil {
			return nil, fmt.Errorf("model pool: %w", models.ErrExternalModelUnavailable)
		}
		out = Model(p.Game.Range, scorer, size)
	default:
		return nil, fmt.Errorf("unknown pool strategy %q", strategy)
	}
	if len(out) < p.Game.StandardSize {
		return nil, fmt.Errorf("%w: %d numbers, need %d", models.ErrPoolTooSmall, len(out), p.Game.StandardSize)
	}
	return out, nil
}

// Dynamic takes the first size numbers of the profile's weighted pool.
func Dynamic(p *models.StatisticalProfile, size int) []int {
	return head(p.DynamicPool, size)
}

// Frequency takes the size least frequently drawn numbers.
func Frequency(rng int, draws []models.Draw, size int) []int {
	return head(profile.LeastFrequentFirst(rng, profile.Frequencies(rng, draws)), size)
}

// Model takes the size numbers with the highest external score.
func Model(rng int, scorer domsvc.Scorer, size int) []int {
	nums := make([]int, rng)
	scores := make([]float64, rng+1)
	for i := range nums {
		nums[i] = i + 1
		scores[i+1] = scorer.Score(i + 1)
	}
	sort.SliceStable(nums, func(i, j int) bool { return scores[nums[i]] > scores[nums[j]] })
	return head(nums, size)
}

// Hits counts how many of nums are in pool.
func Hits(pool []int, nums []int) int {
	in := make(map[int]bool, len(pool))
	for _, n := range pool {
		in[n] = true
	}
	c := 0
	for _, n := range nums {
		if in[n] {
			c++
		}
	}
	return c
}

func head(nums []int, size int) []int {
	if size < 0 {
		size = 0
	}
	if size > len(nums) {
		size = len(nums)
	}
	return append([]int(nil), nums[:size]...)
}
