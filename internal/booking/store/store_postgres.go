package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"paylane/internal/booking/models"
	id "paylane/pkg/domain"
	"paylane/pkg/platform/sentinel"
)

// Postgres persists advisory sessions. The client id and start instant
// sit in their own columns for listing; the session body is jsonb.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS advisory_sessions (
			id        UUID PRIMARY KEY,
			client_id UUID NOT NULL,
			starts_at TIMESTAMPTZ NOT NULL,
			doc       JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS advisory_sessions_client_idx ON advisory_sessions (client_id);
		CREATE INDEX IF NOT EXISTS advisory_sessions_starts_idx ON advisory_sessions (starts_at)`)
	if err != nil {
		return fmt.Errorf("migrate advisory_sessions: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, session *models.AdvisorySession) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO advisory_sessions (id, client_id, starts_at, doc) VALUES ($1, $2, $3, $4)`,
		session.ID.String(), session.ClientID.String(), session.At(), doc)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, sessionID id.SessionID) (*models.AdvisorySession, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM advisory_sessions WHERE id = $1`, sessionID.String()).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return unmarshalSession(doc)
}

func (s *Postgres) ListByClient(ctx context.Context, clientID id.ClientID) ([]*models.AdvisorySession, error) {
	return s.queryList(ctx,
		`SELECT doc FROM advisory_sessions WHERE client_id = $1 ORDER BY starts_at`, clientID.String())
}

func (s *Postgres) ListAll(ctx context.Context) ([]*models.AdvisorySession, error) {
	return s.queryList(ctx, `SELECT doc FROM advisory_sessions ORDER BY starts_at`)
}

func (s *Postgres) ListBetween(ctx context.Context, from, to time.Time) ([]*models.AdvisorySession, error) {
	return s.queryList(ctx,
		`SELECT doc FROM advisory_sessions WHERE starts_at >= $1 AND starts_at < $2 ORDER BY starts_at`, from, to)
}

// Execute validates and mutates one session under a row lock.
func (s *Postgres) Execute(ctx context.Context, sessionID id.SessionID, validate func(*models.AdvisorySession) error, apply func(*models.AdvisorySession)) (*models.AdvisorySession, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var doc []byte
	err = tx.QueryRowContext(ctx,
		`SELECT doc FROM advisory_sessions WHERE id = $1 FOR UPDATE`, sessionID.String()).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock session: %w", err)
	}

	session, err := unmarshalSession(doc)
	if err != nil {
		return nil, err
	}
	if err := validate(session); err != nil {
		return nil, err
	}
	apply(session)

	updated, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE advisory_sessions SET doc = $2, starts_at = $3 WHERE id = $1`,
		session.ID.String(), updated, session.At()); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return session, nil
}

func (s *Postgres) queryList(ctx context.Context, query string, args ...any) ([]*models.AdvisorySession, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*models.AdvisorySession
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session, err := unmarshalSession(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

func unmarshalSession(doc []byte) (*models.AdvisorySession, error) {
	var session models.AdvisorySession
	if err := json.Unmarshal(doc, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}
