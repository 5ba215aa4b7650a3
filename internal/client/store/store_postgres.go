package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"paylane/internal/client/models"
	id "paylane/pkg/domain"
	"paylane/pkg/platform/sentinel"
)

// Postgres persists the client aggregate as a document row. The roster and
// subscription lists travel inside a jsonb column; the engine treats storage
// as a document store and never queries inside the document.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the clients table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS clients (
			id         UUID PRIMARY KEY,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate clients: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, client *models.Client) error {
	doc, err := json.Marshal(client)
	if err != nil {
		return fmt.Errorf("marshal client: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO clients (id, doc, updated_at) VALUES ($1, $2, $3)`,
		client.ID.String(), doc, client.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM clients WHERE id = $1`, clientID.String()).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return unmarshalClient(doc)
}

func (s *Postgres) List(ctx context.Context) ([]*models.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM clients ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []*models.Client
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		client, err := unmarshalClient(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, client)
	}
	return out, rows.Err()
}

// Execute validates and mutates one client under a row lock, the SQL
// equivalent of the memory store's atomic callback.
func (s *Postgres) Execute(ctx context.Context, clientID id.ClientID, validate func(*models.Client) error, apply func(*models.Client)) (*models.Client, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var doc []byte
	err = tx.QueryRowContext(ctx,
		`SELECT doc FROM clients WHERE id = $1 FOR UPDATE`, clientID.String()).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock client: %w", err)
	}

	client, err := unmarshalClient(doc)
	if err != nil {
		return nil, err
	}
	if err := validate(client); err != nil {
		return nil, err
	}
	apply(client)

	updated, err := json.Marshal(client)
	if err != nil {
		return nil, fmt.Errorf("marshal client: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE clients SET doc = $2, updated_at = $3 WHERE id = $1`,
		client.ID.String(), updated, client.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return client, nil
}

func unmarshalClient(doc []byte) (*models.Client, error) {
	var client models.Client
	if err := json.Unmarshal(doc, &client); err != nil {
		return nil, fmt.Errorf("unmarshal client: %w", err)
	}
	return &client, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	// 23505 is the unique_violation SQLSTATE.
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
