package models

import (
	"fmt"
	"sort"
	"strings"
)

// GameID identifies a supported lottery game.
type GameID string

const (
	GameDailyGrand GameID = "dailyGrand"
	GameLottoMax   GameID = "lottoMax"
	GameLotto649   GameID = "lotto649"
)

// GameProfile describes the shape of a game's draws. Immutable.
type GameProfile struct {
	ID           GameID
	StandardSize int
	Range        int
	GrandRange   int // 0 when the game has no grand number
	Table        string
}

// HasGrand reports whether draws of the game carry a grand number.
func (g GameProfile) HasGrand() bool { return g.GrandRange > 0 }

// HitTarget is the number of pool hits a back-tested draw needs to count as a success.
func (g GameProfile) HitTarget() int {
	switch g.ID {
	case GameDailyGrand:
		return 3
	case GameLotto649, GameLottoMax:
		return 4
	default:
		return (g.StandardSize + 1) / 2
	}
}

// HitsToWin is the smallest main-number match count that pays a prize.
func (g GameProfile) HitsToWin() int {
	if g.ID == GameDailyGrand {
		return 2
	}
	return 3
}

var games = map[GameID]GameProfile{
	GameDailyGrand: {ID: GameDailyGrand, StandardSize: 5, Range: 49, GrandRange: 7, Table: "dailygrand"},
	GameLottoMax:   {ID: GameLottoMax, StandardSize: 7, Range: 50, Table: "lottomax"},
	GameLotto649:   {ID: GameLotto649, StandardSize: 6, Range: 49, Table: "lotto649"},
}

// LookupGame resolves a game by id or by table name, case-insensitively.
func LookupGame(id string) (GameProfile, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	for _, g := range games {
		if strings.ToLower(string(g.ID)) == key || g.Table == key {
			return g, nil
		}
	}
	return GameProfile{}, fmt.Errorf("%w: %q", ErrUnknownGame, id)
}

// Games returns every supported game ordered by id.
func Games() []GameProfile {
	out := make([]GameProfile, 0, len(games))
	for _, g := range games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
