package payout

import (
	"fmt"
	"slices"

	"MillionaireMaker/internal/domain/models"
)

// Tier is one prize level of a game.
type Tier struct {
	Label string
	Prize string
}

// Result is the outcome of checking a ticket against a draw.
type Result struct {
	Matches    int
	BonusMatch bool
	GrandMatch bool
	Tier       *Tier
}

// Won reports whether the ticket reached any prize tier.
func (r Result) Won() bool { return r.Tier != nil }

var tables = map[models.GameID][]Tier{
	models.GameLottoMax: {
		{"7/7", "Jackpot (share of 89.25% of the pool's fund)"},
		{"6/7 + Bonus", "Share of 2.5% of the pool's fund"},
		{"6/7", "Share of 2.5% of the pool's fund"},
		{"5/7 + Bonus", "Share of 1.5% of the pool's fund"},
		{"5/7", "Share of 3.5% of the pool's fund"},
		{"4/7 + Bonus", "Share of 0.75% of the pool's fund"},
		{"4/7", "$20"},
		{"3/7 + Bonus", "$20"},
		{"3/7", "Free Play"},
	},
	models.GameLotto649: {
		{"6/6", "Jackpot (share of 80.5% of the main prize pool)"},
		{"5/6 + Bonus", "Share of 6% of the main prize pool"},
		{"5/6", "Share of 5% of the main prize pool"},
		{"4/6", "Share of 8.5% of the main prize pool"},
		{"3/6", "$10"},
		{"2/6 + Bonus", "$5"},
		{"2/6", "Free Play"},
	},
	models.GameDailyGrand: {
		{"5/5 + Grand Number", "$1,000 a day for life"},
		{"5/5", "$25,000 a year for life"},
		{"4/5 + Grand Number", "$1,000"},
		{"4/5", "$500"},
		{"3/5 + Grand Number", "$100"},
		{"3/5", "$20"},
		{"2/5 + Grand Number", "$10"},
		{"1/5 + Grand Number", "$4"},
		{"0/5 + Grand Number", "Free Play"},
	},
}

// Table returns the prize tiers of a game, best first.
func Table(game models.GameID) []Tier {
	return tables[game]
}

// Check compares a ticket with a draw and resolves the best prize tier.
// Bonus-number games match the bonus against the ticket's main numbers;
// grand-number games match the ticket's grand number.
func Check(game models.GameProfile, ticket models.Combination, draw models.Draw) Result {
	res := Result{}
	for _, n := range ticket.Main {
		if slices.Contains(draw.Main, n) {
			res.Matches++
		}
	}
	var extra string
	if game.HasGrand() {
		res.GrandMatch = ticket.Grand != nil && draw.Grand != nil && *ticket.Grand == *draw.Grand
		if res.GrandMatch {
			extra = " + Grand Number"
		}
	} else {
		res.BonusMatch = draw.Bonus != nil && slices.Contains(ticket.Main, *draw.Bonus)
		if res.BonusMatch {
			extra = " + Bonus"
		}
	}

	base := fmt.Sprintf("%d/%d", res.Matches, game.StandardSize)
	for _, label := range []string{base + extra, base} {
		for i, t := range tables[game.ID] {
			if t.Label == label {
				res.Tier = &tables[game.ID][i]
				return res
			}
		}
	}
	return res
}
