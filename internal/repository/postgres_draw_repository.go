package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/domain/repository"
	applogger "MillionaireMaker/pkg/logger"
)

// drawTables is the allow-list of table names; game ids never reach SQL otherwise.
var drawTables = map[models.GameID]string{
	models.GameLottoMax:   "lottomax",
	models.GameLotto649:   "lotto649",
	models.GameDailyGrand: "dailygrand",
}

type drawRow struct {
	DrawDate    time.Time     `db:"draw_date"`
	MainNumbers string        `db:"main_numbers"`
	GrandNumber sql.NullInt64 `db:"grand_number"`
	BonusNumber sql.NullInt64 `db:"bonus_number"`
}

// PostgresDrawRepository reads draw history from one table per game.
type PostgresDrawRepository struct {
	db *sqlx.DB
	l  *applogger.Logger
}

var _ repository.DrawRepository = (*PostgresDrawRepository)(nil)

// NewPostgresDrawRepository creates the draw repository.
func NewPostgresDrawRepository(db *sqlx.DB) *PostgresDrawRepository {
	return &PostgresDrawRepository{db: db}
}

// SetLogger sets optional logger.
func (r *PostgresDrawRepository) SetLogger(l *applogger.Logger) { r.l = l }

// Fetch returns every stored draw of the game ordered by date.
// Rows whose main_numbers cannot be parsed are skipped.
func (r *PostgresDrawRepository) Fetch(ctx context.Context, game models.GameProfile) ([]models.Draw, error) {
	table, err := tableFor(game)
	if err != nil {
		return nil, err
	}

	var rows []drawRow
	q := fmt.Sprintf("SELECT draw_date, main_numbers, grand_number, bonus_number FROM %s ORDER BY draw_date ASC", table)
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("fetch %s draws: %w", table, err)
	}

	draws := make([]models.Draw, 0, len(rows))
	for _, row := range rows {
		main, err := ParseNumberArray(row.MainNumbers)
		if err != nil {
			if r.l != nil {
				r.l.Warn("skipping malformed draw row",
					applogger.String("table", table),
					applogger.String("date", row.DrawDate.Format(time.DateOnly)),
					applogger.Error(err))
			}
			continue
		}
		draws = append(draws, models.Draw{
			Date:  row.DrawDate.UTC(),
			Main:  main,
			Grand: nullInt(row.GrandNumber),
			Bonus: nullInt(row.BonusNumber),
		})
	}
	return draws, nil
}

// Upsert inserts the draw or replaces the row already stored for its date.
func (r *PostgresDrawRepository) Upsert(ctx context.Context, game models.GameProfile, d models.Draw) error {
	table, err := tableFor(game)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO %s (draw_date, main_numbers, grand_number, bonus_number)
VALUES ($1, $2, $3, $4)
ON CONFLICT (draw_date) DO UPDATE SET main_numbers = EXCLUDED.main_numbers, grand_number = EXCLUDED.grand_number, bonus_number = EXCLUDED.bonus_number`, table)

	if _, err := r.db.ExecContext(ctx, q, d.Date, FormatNumberArray(d.Main), toNull(d.Grand), toNull(d.Bonus)); err != nil {
		return fmt.Errorf("upsert %s draw: %w", table, err)
	}
	return nil
}

func tableFor(game models.GameProfile) (string, error) {
	table, ok := drawTables[game.ID]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownGame, game.ID)
	}
	return table, nil
}

// ParseNumberArray parses the "{1,2,3}" text form used by the draw tables.
func ParseNumberArray(s string) ([]int, error) {
	s = strings.Trim(strings.TrimSpace(s), "{}")
	if s == "" {
		return nil, fmt.Errorf("empty number array")
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parse number array %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// FormatNumberArray is the inverse of ParseNumberArray.
func FormatNumberArray(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func toNull(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
