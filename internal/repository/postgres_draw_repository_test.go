package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MillionaireMaker/internal/domain/models"
)

func newMockRepo(t *testing.T) (*PostgresDrawRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresDrawRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func mustGame(t *testing.T, id string) models.GameProfile {
	t.Helper()
	g, err := models.LookupGame(id)
	require.NoError(t, err)
	return g
}

func TestFetchParsesRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	d1 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"draw_date", "main_numbers", "grand_number", "bonus_number"}).
		AddRow(d1, "{1,2,3,4,5}", 6, nil).
		AddRow(d2, "{bad}", nil, nil).
		AddRow(d2, "{ 7, 8,9,10,11}", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT draw_date, main_numbers, grand_number, bonus_number FROM dailygrand ORDER BY draw_date ASC")).
		WillReturnRows(rows)

	draws, err := repo.Fetch(context.Background(), mustGame(t, "dailyGrand"))
	require.NoError(t, err)
	require.Len(t, draws, 2)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, draws[0].Main)
	require.NotNil(t, draws[0].Grand)
	assert.Equal(t, 6, *draws[0].Grand)
	assert.Nil(t, draws[0].Bonus)
	assert.Equal(t, []int{7, 8, 9, 10, 11}, draws[1].Main)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM lotto649").WillReturnError(errors.New("connection refused"))

	_, err := repo.Fetch(context.Background(), mustGame(t, "lotto649"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch lotto649 draws")
}

func TestFetchUnknownGame(t *testing.T) {
	repo, _ := newMockRepo(t)
	_, err := repo.Fetch(context.Background(), models.GameProfile{ID: "powerball; DROP TABLE x"})
	assert.ErrorIs(t, err, models.ErrUnknownGame)
}

func TestUpsert(t *testing.T) {
	repo, mock := newMockRepo(t)
	bonus := 12
	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lotto649 (draw_date, main_numbers, grand_number, bonus_number)")).
		WithArgs(date, "{1,5,9,22,30,41}", nil, int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), mustGame(t, "lotto649"), models.Draw{
		Date: date, Main: []int{1, 5, 9, 22, 30, 41}, Bonus: &bonus,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNumberArray(t *testing.T) {
	nums, err := ParseNumberArray("{3,14,15}")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 14, 15}, nums)
	assert.Equal(t, "{3,14,15}", FormatNumberArray(nums))

	_, err = ParseNumberArray("{}")
	assert.Error(t, err)
	_, err = ParseNumberArray("{1,x}")
	assert.Error(t, err)
}
