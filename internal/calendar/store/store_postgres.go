package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"paylane/internal/calendar/models"
	id "paylane/pkg/domain"
	"paylane/pkg/platform/sentinel"
)

// Postgres persists blackout windows. The window date lives in its own
// column so month lookups stay a range scan; the rest of the window
// travels as a jsonb document.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS blackout_windows (
			id   UUID PRIMARY KEY,
			day  DATE NOT NULL,
			doc  JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS blackout_windows_day_idx ON blackout_windows (day)`)
	if err != nil {
		return fmt.Errorf("migrate blackout_windows: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, w *models.BlackoutWindow) error {
	doc, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal window: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO blackout_windows (id, day, doc) VALUES ($1, $2, $3)`,
		w.ID.String(), w.Date, doc)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert window: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, windowID id.WindowID) (*models.BlackoutWindow, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM blackout_windows WHERE id = $1`, windowID.String()).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find window: %w", err)
	}
	return unmarshalWindow(doc)
}

func (s *Postgres) ListBetween(ctx context.Context, from, to time.Time) ([]*models.BlackoutWindow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM blackout_windows WHERE day BETWEEN $1 AND $2 ORDER BY day`,
		models.DateOnly(from), models.DateOnly(to))
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	defer rows.Close()

	var out []*models.BlackoutWindow
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan window: %w", err)
		}
		w, err := unmarshalWindow(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Postgres) ListOnDate(ctx context.Context, date time.Time) ([]*models.BlackoutWindow, error) {
	return s.ListBetween(ctx, date, date)
}

func (s *Postgres) Delete(ctx context.Context, windowID id.WindowID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM blackout_windows WHERE id = $1`, windowID.String())
	if err != nil {
		return fmt.Errorf("delete window: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func unmarshalWindow(doc []byte) (*models.BlackoutWindow, error) {
	var w models.BlackoutWindow
	if err := json.Unmarshal(doc, &w); err != nil {
		return nil, fmt.Errorf("unmarshal window: %w", err)
	}
	return &w, nil
}
