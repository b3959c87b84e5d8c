package filter

import (
	"math"
	"sort"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/services/profile"
)

const (
	// SequentialThreshold is the number of successive +1 steps that rejects a combination.
	SequentialThreshold = 3
	boundFactor         = 1.5
	maxSameLastDigit    = 3
	maxRepeatsFromLast  = 2
	maxNumbersPerDecade = 4
)

// IsArithmeticProgression reports whether the sorted numbers share one common
// difference greater than 1. Fewer than 3 numbers never qualify.
func IsArithmeticProgression(nums []int) bool {
	if len(nums) < 3 {
		return false
	}
	sorted := sortedCopy(nums)
	diff := sorted[1] - sorted[0]
	if diff <= 1 {
		return false
	}
	for i := 2; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] != diff {
			return false
		}
	}
	return true
}

// ContainsTooManySequentials reports whether the sorted numbers contain at
// least maxSequential successive +1 steps.
func ContainsTooManySequentials(nums []int, maxSequential int) bool {
	sorted := sortedCopy(nums)
	count := 0
	for i := 0; i+1 < len(sorted); i++ {
		if sorted[i+1] == sorted[i]+1 {
			count++
		} else {
			count = 0
		}
		if count >= maxSequential {
			return true
		}
	}
	return false
}

func balanceBounds(k int) (int, int) {
	return k/2 - 1, (k+1)/2 + 1
}

// IsBalancedOddEven requires the odd count within [floor(k/2)-1, ceil(k/2)+1].
func IsBalancedOddEven(nums []int) bool {
	odd := 0
	for _, n := range nums {
		if n%2 != 0 {
			odd++
		}
	}
	lo, hi := balanceBounds(len(nums))
	return odd >= lo && odd <= hi
}

// IsBalancedHighLow applies the odd/even bound to numbers <= ceil(rangeMax/2).
func IsBalancedHighLow(nums []int, rangeMax int) bool {
	mid := (rangeMax + 1) / 2
	low := 0
	for _, n := range nums {
		if n <= mid {
			low++
		}
	}
	lo, hi := balanceBounds(len(nums))
	return low >= lo && low <= hi
}

// IsBalanced combines the odd/even and high/low checks.
func IsBalanced(nums []int, rangeMax int) bool {
	return IsBalancedOddEven(nums) && IsBalancedHighLow(nums, rangeMax)
}

// WithinStats reports whether v lies within mean ± 1.5·stdDev. Absent stats pass.
func WithinStats(v float64, s *models.MeanStd) bool {
	if s == nil {
		return true
	}
	return v >= s.Mean-boundFactor*s.StdDev && v <= s.Mean+boundFactor*s.StdDev
}

// WithinPositionalBounds checks every sorted position against its bound.
// Absent bounds or a length mismatch pass.
func WithinPositionalBounds(nums []int, bounds []models.Bound) bool {
	if bounds == nil || len(nums) != len(bounds) {
		return true
	}
	for i, n := range sortedCopy(nums) {
		if n < bounds[i].Min || n > bounds[i].Max {
			return false
		}
	}
	return true
}

// HasValidLastDigits rejects more than 3 numbers sharing a last digit or fewer
// than k/2 distinct last digits. Absent last-digit statistics pass.
func HasValidLastDigits(nums []int, shares []float64) bool {
	if shares == nil {
		return true
	}
	var counts [10]int
	distinct := 0
	for _, n := range nums {
		d := n % 10
		if counts[d] == 0 {
			distinct++
		}
		counts[d]++
		if counts[d] > maxSameLastDigit {
			return false
		}
	}
	return float64(distinct) >= float64(len(nums))/2
}

// IsTooSimilar reports whether any draw in window shares at least
// ceil(k·threshold/100) numbers with nums.
func IsTooSimilar(nums []int, window []models.Draw, threshold float64) bool {
	if len(window) == 0 {
		return false
	}
	need := int(math.Ceil(float64(len(nums)) * threshold / 100))
	set := toSet(nums)
	for _, d := range window {
		if matches(set, d.Main) >= need {
			return true
		}
	}
	return false
}

// MaxSimilarity returns the highest percentage of nums found in any single draw of window.
func MaxSimilarity(nums []int, window []models.Draw) float64 {
	if len(window) == 0 || len(nums) == 0 {
		return 0
	}
	set := toSet(nums)
	best := 0.0
	for _, d := range window {
		sim := float64(matches(set, d.Main)) / float64(len(nums)) * 100
		if sim > best {
			best = sim
		}
	}
	return best
}

// HasValidConsecutiveRepeat allows at most 2 numbers from the latest draw. A missing draw passes.
func HasValidConsecutiveRepeat(nums []int, lastDraw []int) bool {
	if lastDraw == nil {
		return true
	}
	return matches(toSet(lastDraw), nums) <= maxRepeatsFromLast
}

// HasValidNumberGroups rejects combinations where one decade bucket holds
// k-1 or more numbers, or more than 4.
func HasValidNumberGroups(nums []int, rangeMax int) bool {
	groups := make([]int, (rangeMax+9)/10)
	if len(groups) == 0 {
		return true
	}
	for _, n := range nums {
		idx := (n - 1) / 10
		if idx >= 0 && idx < len(groups) {
			groups[idx]++
		}
	}
	largest := groups[0]
	for _, c := range groups[1:] {
		largest = max(largest, c)
	}
	return largest < len(nums)-1 && largest <= maxNumbersPerDecade
}

// SumWithin tests the plain sum against the profile's sum statistics.
func SumWithin(nums []int, p *models.StatisticalProfile) bool {
	return WithinStats(float64(profile.Sum(nums)), p.Sum)
}

func DigitSumWithin(nums []int, p *models.StatisticalProfile) bool {
	return WithinStats(float64(profile.DigitSum(nums)), p.DigitSum)
}

func RankSumWithin(nums []int, p *models.StatisticalProfile) bool {
	if p.RankSum == nil {
		return true
	}
	return WithinStats(float64(profile.RankSum(p, nums)), p.RankSum)
}

func DeltaWithin(nums []int, p *models.StatisticalProfile) bool {
	return WithinStats(float64(profile.DeltaSum(nums)), p.Delta)
}

func matches(set map[int]bool, nums []int) int {
	c := 0
	for _, n := range nums {
		if set[n] {
			c++
		}
	}
	return c
}

func toSet(nums []int) map[int]bool {
	set := make(map[int]bool, len(nums))
	for _, n := range nums {
		set[n] = true
	}
	return set
}

func sortedCopy(nums []int) []int {
	out := append([]int(nil), nums...)
	sort.Ints(out)
	return out
}
