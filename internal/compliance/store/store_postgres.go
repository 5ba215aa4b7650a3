package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"paylane/internal/compliance/models"
	id "paylane/pkg/domain"
	"paylane/pkg/platform/sentinel"
)

// Postgres persists compliance issues. Status and client id are real
// columns so the open-issue listing stays an index scan; the rest of the
// issue is jsonb.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS compliance_issues (
			id          UUID PRIMARY KEY,
			client_id   UUID NOT NULL,
			status      TEXT NOT NULL,
			detected_at TIMESTAMPTZ NOT NULL,
			doc         JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS compliance_issues_open_idx ON compliance_issues (status, detected_at)`)
	if err != nil {
		return fmt.Errorf("migrate compliance_issues: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, issue *models.ComplianceIssue) error {
	doc, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("marshal issue: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO compliance_issues (id, client_id, status, detected_at, doc) VALUES ($1, $2, $3, $4, $5)`,
		issue.ID.String(), issue.ClientID.String(), string(issue.Status), issue.DetectedAt, doc)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, issueID id.IssueID) (*models.ComplianceIssue, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM compliance_issues WHERE id = $1`, issueID.String()).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find issue: %w", err)
	}
	return unmarshalIssue(doc)
}

func (s *Postgres) ListOpen(ctx context.Context, clientID id.ClientID) ([]*models.ComplianceIssue, error) {
	query := `SELECT doc FROM compliance_issues WHERE status <> 'resolved' ORDER BY detected_at`
	args := []any{}
	if !clientID.IsZero() {
		query = `SELECT doc FROM compliance_issues WHERE status <> 'resolved' AND client_id = $1 ORDER BY detected_at`
		args = append(args, clientID.String())
	}
	return s.queryList(ctx, query, args...)
}

func (s *Postgres) ListAll(ctx context.Context) ([]*models.ComplianceIssue, error) {
	return s.queryList(ctx, `SELECT doc FROM compliance_issues ORDER BY detected_at`)
}

// Execute validates and mutates one issue under a row lock.
func (s *Postgres) Execute(ctx context.Context, issueID id.IssueID, validate func(*models.ComplianceIssue) error, apply func(*models.ComplianceIssue)) (*models.ComplianceIssue, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var doc []byte
	err = tx.QueryRowContext(ctx,
		`SELECT doc FROM compliance_issues WHERE id = $1 FOR UPDATE`, issueID.String()).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock issue: %w", err)
	}

	issue, err := unmarshalIssue(doc)
	if err != nil {
		return nil, err
	}
	if err := validate(issue); err != nil {
		return nil, err
	}
	apply(issue)

	updated, err := json.Marshal(issue)
	if err != nil {
		return nil, fmt.Errorf("marshal issue: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE compliance_issues SET doc = $2, status = $3 WHERE id = $1`,
		issue.ID.String(), updated, string(issue.Status)); err != nil {
		return nil, fmt.Errorf("update issue: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return issue, nil
}

func (s *Postgres) queryList(ctx context.Context, query string, args ...any) ([]*models.ComplianceIssue, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	var out []*models.ComplianceIssue
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issue, err := unmarshalIssue(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, issue)
	}
	return out, rows.Err()
}

func unmarshalIssue(doc []byte) (*models.ComplianceIssue, error) {
	var issue models.ComplianceIssue
	if err := json.Unmarshal(doc, &issue); err != nil {
		return nil, fmt.Errorf("unmarshal issue: %w", err)
	}
	return &issue, nil
}
