package profile

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"MillionaireMaker/internal/domain/models"
)

const (
	// MinScalarDraws is the history needed for scalar, positional and last-digit statistics.
	MinScalarDraws = 10
	// HotColdWindow is both the window size and the minimum history for hot/cold numbers.
	HotColdWindow = 20
	hotColdShare  = 0.2
	boundFactor   = 1.5
	dueFactor     = 1.5
)

// Compute derives the statistical profile of draws. draws must already be
// valid and sorted ascending by date (see ValidDraws). The result is a pure
// function of its inputs.
func Compute(game models.GameProfile, draws []models.Draw) *models.StatisticalProfile {
	p := &models.StatisticalProfile{
		Game:      game,
		DrawCount: len(draws),
	}
	p.Frequencies = Frequencies(game.Range, draws)
	p.RankMap = rankMap(game.Range, p.Frequencies)
	p.PositionalAverages = positionalAverages(game.Range, draws)
	p.Pairing = pairingMatrix(game.Range, draws)
	p.AvgGaps, p.CurrentGaps = gapStats(game.Range, draws)

	if len(draws) >= MinScalarDraws {
		p.Sum = scalarStats(draws, func(d models.Draw) float64 { return float64(Sum(d.Main)) })
		p.DigitSum = scalarStats(draws, func(d models.Draw) float64 { return float64(DigitSum(d.Main)) })
		p.Delta = scalarStats(draws, func(d models.Draw) float64 { return float64(DeltaSum(d.Main)) })
		p.RankSum = scalarStats(draws, func(d models.Draw) float64 { return float64(RankSum(p, d.Main)) })
		p.PositionalBounds = positionalBounds(game.StandardSize, draws)
		p.LastDigits = lastDigitShares(game.StandardSize, draws)
	}
	if len(draws) >= HotColdWindow {
		p.Hot, p.Cold = hotCold(game.Range, draws[len(draws)-HotColdWindow:])
	}
	p.DynamicPool = dynamicPool(p)
	return p
}

// Frequencies counts how often every number 1..rng was drawn.
func Frequencies(rng int, draws []models.Draw) []int {
	freq := make([]int, rng+1)
	for _, d := range draws {
		for _, n := range d.Main {
			if n >= 1 && n <= rng {
				freq[n]++
			}
		}
	}
	return freq
}

// RankedByFrequency returns 1..rng ordered by descending frequency,
// ties in ascending number order.
func RankedByFrequency(rng int, freq []int) []int {
	nums := numbers(rng)
	sort.SliceStable(nums, func(i, j int) bool { return freq[nums[i]] > freq[nums[j]] })
	return nums
}

// LeastFrequentFirst returns 1..rng ordered by ascending frequency,
// ties in ascending number order.
func LeastFrequentFirst(rng int, freq []int) []int {
	nums := numbers(rng)
	sort.SliceStable(nums, func(i, j int) bool { return freq[nums[i]] < freq[nums[j]] })
	return nums
}

func rankMap(rng int, freq []int) []int {
	ranks := make([]int, rng+1)
	for i, n := range RankedByFrequency(rng, freq) {
		ranks[n] = i + 1
	}
	return ranks
}

func scalarStats(draws []models.Draw, value func(models.Draw) float64) *models.MeanStd {
	data := make(stats.Float64Data, 0, len(draws))
	for _, d := range draws {
		data = append(data, value(d))
	}
	ms := meanStd(data)
	return &ms
}

func meanStd(data stats.Float64Data) models.MeanStd {
	if data.Len() == 0 {
		return models.MeanStd{}
	}
	mean, _ := stats.Mean(data)
	sd, _ := stats.StandardDeviationPopulation(data)
	return models.MeanStd{Mean: mean, StdDev: sd}
}

func positionalBounds(size int, draws []models.Draw) []models.Bound {
	positions := make([]stats.Float64Data, size)
	for _, d := range draws {
		for i, n := range d.Main {
			if i < size {
				positions[i] = append(positions[i], float64(n))
			}
		}
	}
	bounds := make([]models.Bound, size)
	for i, data := range positions {
		ms := meanStd(data)
		bounds[i] = models.Bound{
			Min: roundHalfUp(ms.Mean - boundFactor*ms.StdDev),
			Max: roundHalfUp(ms.Mean + boundFactor*ms.StdDev),
		}
	}
	return bounds
}

func positionalAverages(rng int, draws []models.Draw) []float64 {
	sums := make([]int, rng+1)
	counts := make([]int, rng+1)
	for _, d := range draws {
		for i, n := range d.Main {
			sums[n] += i + 1
			counts[n]++
		}
	}
	avg := make([]float64, rng+1)
	for n := 1; n <= rng; n++ {
		if counts[n] > 0 {
			avg[n] = float64(sums[n]) / float64(counts[n])
		}
	}
	return avg
}

func pairingMatrix(rng int, draws []models.Draw) [][]int {
	m := make([][]int, rng+1)
	for i := range m {
		m[i] = make([]int, rng+1)
	}
	for _, d := range draws {
		for i := 0; i < len(d.Main); i++ {
			for j := i + 1; j < len(d.Main); j++ {
				a, b := d.Main[i], d.Main[j]
				m[a][b]++
				m[b][a]++
			}
		}
	}
	return m
}

func gapStats(rng int, draws []models.Draw) ([]float64, []int) {
	lastSeen := make([]int, rng+1)
	for i := range lastSeen {
		lastSeen[i] = -1
	}
	gapSum := make([]int, rng+1)
	gapCount := make([]int, rng+1)
	for idx, d := range draws {
		for _, n := range d.Main {
			if lastSeen[n] != -1 {
				gapSum[n] += idx - lastSeen[n]
				gapCount[n]++
			}
			lastSeen[n] = idx
		}
	}
	total := len(draws)
	avg := make([]float64, rng+1)
	cur := make([]int, rng+1)
	for n := 0; n <= rng; n++ {
		if gapCount[n] > 0 {
			avg[n] = float64(gapSum[n]) / float64(gapCount[n])
		} else {
			avg[n] = float64(total)
		}
		if lastSeen[n] == -1 {
			cur[n] = total
		} else {
			cur[n] = total - 1 - lastSeen[n]
		}
	}
	return avg, cur
}

func lastDigitShares(size int, draws []models.Draw) []float64 {
	counts := make([]int, 10)
	for _, d := range draws {
		for _, n := range d.Main {
			counts[n%10]++
		}
	}
	total := float64(len(draws) * size)
	shares := make([]float64, 10)
	for i, c := range counts {
		shares[i] = float64(c) / total
	}
	return shares
}

func hotCold(rng int, recent []models.Draw) ([]int, []int) {
	ordered := RankedByFrequency(rng, Frequencies(rng, recent))
	k := int(math.Floor(float64(rng) * hotColdShare))
	hot := append([]int(nil), ordered[:k]...)
	cold := append([]int(nil), ordered[len(ordered)-k:]...)
	return hot, cold
}

func dynamicPool(p *models.StatisticalProfile) []int {
	rng := p.Game.Range
	hot := toSet(p.Hot)
	cold := toSet(p.Cold)
	scores := make([]float64, rng+1)
	for n := 1; n <= rng; n++ {
		rankScore := 1 - float64(p.Rank(n))/float64(rng)
		var hotColdScore float64
		switch {
		case hot[n]:
			hotColdScore = 0.5
		case cold[n]:
			hotColdScore = -0.5
		}
		var dueScore float64
		if float64(p.CurrentGaps[n]) > p.AvgGaps[n]*dueFactor {
			dueScore = 1
		}
		scores[n] = rankScore*0.5 + hotColdScore*0.2 + dueScore*0.3
	}
	nums := numbers(rng)
	sort.SliceStable(nums, func(i, j int) bool { return scores[nums[i]] > scores[nums[j]] })
	return nums
}

func numbers(rng int) []int {
	nums := make([]int, rng)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

func toSet(nums []int) map[int]bool {
	set := make(map[int]bool, len(nums))
	for _, n := range nums {
		set[n] = true
	}
	return set
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
