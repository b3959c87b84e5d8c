package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MillionaireMaker/internal/domain/models"
)

func TestFileDrawRepositoryFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draws.json")
	body := `{
  "LOTTO649": [
    {"date": "2024-01-06", "main": [7, 8, 9, 10, 11, 12], "bonus": 3},
    {"date": "not a date", "main": [1, 2, 3, 4, 5, 6]},
    {"date": "2024-01-03", "main": [1, 2, 3, 4, 5, 6]}
  ],
  "dailygrand": [{"date": "2024-01-04", "main": [1, 2, 3, 4, 5], "grand": 6}]
}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	repo := NewFileDrawRepository(path)

	draws, err := repo.Fetch(context.Background(), mustGame(t, "lotto649"))
	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), draws[0].Date)
	require.NotNil(t, draws[1].Bonus)
	assert.Equal(t, 3, *draws[1].Bonus)

	draws, err = repo.Fetch(context.Background(), mustGame(t, "dailyGrand"))
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, 6, *draws[0].Grand)

	draws, err = repo.Fetch(context.Background(), mustGame(t, "lottoMax"))
	require.NoError(t, err)
	assert.Empty(t, draws)
}

func TestFileDrawRepositoryMissingFile(t *testing.T) {
	repo := NewFileDrawRepository(filepath.Join(t.TempDir(), "absent.json"))
	draws, err := repo.Fetch(context.Background(), mustGame(t, "lotto649"))
	require.NoError(t, err)
	assert.Empty(t, draws)
}

func TestFileDrawRepositoryUpsert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draws.json")
	repo := NewFileDrawRepository(path)
	g := mustGame(t, "lotto649")
	day := time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(context.Background(), g, models.Draw{Date: day, Main: []int{1, 2, 3, 4, 5, 6}}))
	require.NoError(t, repo.Upsert(context.Background(), g, models.Draw{Date: day.AddDate(0, 0, -3), Main: []int{4, 5, 6, 7, 8, 9}}))
	require.NoError(t, repo.Upsert(context.Background(), g, models.Draw{Date: day, Main: []int{10, 20, 30, 40, 41, 42}}))

	draws, err := NewFileDrawRepository(path).Fetch(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.Equal(t, day.AddDate(0, 0, -3), draws[0].Date)
	assert.Equal(t, []int{10, 20, 30, 40, 41, 42}, draws[1].Main)
}

func TestFileDrawRepositoryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draws.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err := NewFileDrawRepository(path).Fetch(context.Background(), mustGame(t, "lotto649"))
	assert.Error(t, err)
}
