package profile

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"

	"MillionaireMaker/internal/domain/models"
)

// ValidDraws keeps draws whose main numbers are exactly StandardSize distinct
// values in [1, Range], sorts each kept draw's numbers, and orders the result
// ascending by date. Draws sharing a date keep their input order.
func ValidDraws(game models.GameProfile, draws []models.Draw) []models.Draw {
	out := make([]models.Draw, 0, len(draws))
	for _, d := range draws {
		if !validMain(game, d.Main) {
			continue
		}
		main := append([]int(nil), d.Main...)
		sort.Ints(main)
		d.Main = main
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func validMain(game models.GameProfile, main []int) bool {
	if len(main) != game.StandardSize {
		return false
	}
	seen := make(map[int]bool, len(main))
	for _, n := range main {
		if n < 1 || n > game.Range || seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

// Fingerprint hashes the game and draw sequence into a stable cache key.
func Fingerprint(game models.GameProfile, draws []models.Draw) string {
	h := sha256.New()
	h.Write([]byte(game.ID))
	buf := make([]byte, 8)
	for _, d := range draws {
		binary.BigEndian.PutUint64(buf, uint64(d.Date.Unix()))
		h.Write(buf)
		for _, n := range d.Main {
			h.Write([]byte{byte(n)})
		}
		if d.Grand != nil {
			h.Write([]byte{'g', byte(*d.Grand)})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Sum adds the numbers.
func Sum(nums []int) int {
	s := 0
	for _, n := range nums {
		s += n
	}
	return s
}

// DigitSum adds the decimal digits of every number.
func DigitSum(nums []int) int {
	s := 0
	for _, n := range nums {
		for v := n; v > 0; v /= 10 {
			s += v % 10
		}
	}
	return s
}

// DeltaSum adds the consecutive differences of the ascending-sorted numbers.
func DeltaSum(nums []int) int {
	sorted := sortedCopy(nums)
	s := 0
	for i := 0; i+1 < len(sorted); i++ {
		s += sorted[i+1] - sorted[i]
	}
	return s
}

// RankSum adds the frequency ranks of the numbers. Unranked numbers count as the game's range.
func RankSum(p *models.StatisticalProfile, nums []int) int {
	s := 0
	for _, n := range nums {
		s += p.Rank(n)
	}
	return s
}

// DigitalRoot repeatedly sums decimal digits until one digit remains.
func DigitalRoot(n int) int {
	for n > 9 {
		n = DigitSum([]int{n})
	}
	return n
}

func sortedCopy(nums []int) []int {
	out := append([]int(nil), nums...)
	sort.Ints(out)
	return out
}
