package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/domain/repository"
	"MillionaireMaker/pkg/util"
)

// drawRecord is the on-disk form of a draw.
type drawRecord struct {
	Date  string `json:"date"`
	Main  []int  `json:"main"`
	Grand *int   `json:"grand,omitempty"`
	Bonus *int   `json:"bonus,omitempty"`
}

// FileDrawRepository keeps draw history in a JSON file keyed by game id:
//
//	{"lotto649": [{"date": "2024-01-03", "main": [1, 2, 3, 4, 5, 6], "bonus": 7}]}
//
// The whole file is read on every Fetch and rewritten on every Upsert.
type FileDrawRepository struct {
	path string
	mu   sync.Mutex
}

var _ repository.DrawRepository = (*FileDrawRepository)(nil)

// NewFileDrawRepository creates a repository over path. The file need not exist yet.
func NewFileDrawRepository(path string) *FileDrawRepository {
	return &FileDrawRepository{path: path}
}

// Fetch returns the game's draws ordered by date. Records with unparseable
// dates are skipped; number validation is left to the profiler.
func (r *FileDrawRepository) Fetch(ctx context.Context, game models.GameProfile) ([]models.Draw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.read()
	if err != nil {
		return nil, err
	}
	recs := all[gameKey(all, game.ID)]
	out := make([]models.Draw, 0, len(recs))
	for _, rec := range recs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		d, err := util.ParseDate(rec.Date)
		if err != nil {
			continue
		}
		out = append(out, models.Draw{Date: d, Main: rec.Main, Grand: rec.Grand, Bonus: rec.Bonus})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Upsert replaces the game's draw on the same day or appends a new one.
func (r *FileDrawRepository) Upsert(ctx context.Context, game models.GameProfile, d models.Draw) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.read()
	if err != nil {
		return err
	}
	key := gameKey(all, game.ID)
	rec := drawRecord{Date: d.Date.UTC().Format(time.DateOnly), Main: d.Main, Grand: d.Grand, Bonus: d.Bonus}

	recs := all[key]
	replaced := false
	for i := range recs {
		if existing, err := util.ParseDate(recs[i].Date); err == nil && util.SameDay(existing, d.Date) {
			recs[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		recs = append(recs, rec)
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date < recs[j].Date })
	all[key] = recs
	return r.write(all)
}

func (r *FileDrawRepository) read() (map[string][]drawRecord, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string][]drawRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read draws file: %w", err)
	}
	all := map[string][]drawRecord{}
	if len(b) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("parse draws file: %w", err)
	}
	return all, nil
}

func (r *FileDrawRepository) write(all map[string][]drawRecord) error {
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode draws: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".draws-*.json")
	if err != nil {
		return fmt.Errorf("write draws file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write draws file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write draws file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("write draws file: %w", err)
	}
	return nil
}

// gameKey finds the file's key for id, ignoring case.
func gameKey(all map[string][]drawRecord, id models.GameID) string {
	for k := range all {
		if strings.EqualFold(k, string(id)) {
			return k
		}
	}
	return string(id)
}
