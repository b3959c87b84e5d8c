package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MillionaireMaker/internal/domain/models"
)

// writeHistory writes n weekly lotto649 draws ending 2025-05-31.
func writeHistory(t *testing.T, n int) string {
	t.Helper()
	rng := rand.New(rand.NewPCG(uint64(n), 99))
	end := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	recs := make([]map[string]interface{}, 0, n)
	for i := n - 1; i >= 0; i-- {
		main := rng.Perm(49)[:6]
		for j := range main {
			main[j]++
		}
		slices.Sort(main)
		recs = append(recs, map[string]interface{}{
			"date":  end.AddDate(0, 0, -7*i).Format(time.DateOnly),
			"main":  main,
			"bonus": 1 + rng.IntN(49),
		})
	}
	b, err := json.Marshal(map[string]interface{}{"lotto649": recs})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "draws.json")
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func allFilters() string {
	keys := make([]string, len(models.AllFilters))
	for i, f := range models.AllFilters {
		keys[i] = f.String()
	}
	return strings.Join(keys, ",")
}

func TestGamesCommand(t *testing.T) {
	out, err := execute(t, "games")
	require.NoError(t, err)

	var res models.GamesResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.Games, 3)
	assert.Equal(t, models.PresetNames, res.Presets)
}

func TestGenerateCommand(t *testing.T) {
	path := writeHistory(t, 40)
	args := []string{"generate", "--draws", path, "--game", "lotto649", "--count", "3", "--seed", "7", "--disable", allFilters()}

	out, err := execute(t, args...)
	require.NoError(t, err)
	var res models.GenerateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.Generated)
	require.Len(t, res.Picks, 3)
	for _, p := range res.Picks {
		assert.Len(t, p.Main, 6)
	}

	again, err := execute(t, args...)
	require.NoError(t, err)
	assert.JSONEq(t, out, again, "a fixed seed reproduces the batch")
}

func TestProfileAndAddDraw(t *testing.T) {
	path := writeHistory(t, 20)

	_, err := execute(t, "add-draw", "--draws", path, "--game", "lotto649", "--date", "2025-06-04", "--main", "1,2,3,4,5,6", "--bonus", "7")
	require.NoError(t, err)

	out, err := execute(t, "profile", "--draws", path, "--game", "lotto649")
	require.NoError(t, err)
	var prof models.ProfileResponse
	require.NoError(t, json.Unmarshal([]byte(out), &prof))
	assert.Equal(t, 21, prof.DrawCount)

	out, err = execute(t, "check", "--draws", path, "--game", "lotto649", "--main", "1,2,3,40,41,42")
	require.NoError(t, err)
	var chk models.CheckResponse
	require.NoError(t, json.Unmarshal([]byte(out), &chk))
	assert.Equal(t, 3, chk.Matches)
	assert.True(t, chk.Won)
}

func TestAddDrawRejectsInvalid(t *testing.T) {
	path := writeHistory(t, 5)
	_, err := execute(t, "add-draw", "--draws", path, "--game", "lotto649", "--date", "2025-06-04", "--main", "1,2,3")
	assert.Error(t, err)
}

func TestCommandsNeedDrawSource(t *testing.T) {
	_, err := execute(t, "profile", "--game", "lotto649")
	assert.ErrorContains(t, err, "--draws or --config")

	_, err = execute(t, "generate", "--draws", "x.json")
	assert.Error(t, err, "game is required")
}
