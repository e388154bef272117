package blob

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore keeps each named document as a single jsonb row, preserving
// the load-whole-document, save-whole-document contract while giving the
// blobs a durable home.
type PostgresStore struct {
	db   *sql.DB
	name string
}

func NewPostgresStore(db *sql.DB, name string) *PostgresStore {
	return &PostgresStore{db: db, name: name}
}

// Connect opens the database and verifies it is reachable.
func Connect(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the documents table when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS blob_documents (
			name       TEXT PRIMARY KEY,
			body       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create blob_documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, v any) error {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM blob_documents WHERE name = $1`, s.name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("load document %q: %w", s.name, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode document %q: %w", s.name, err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", s.name, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO blob_documents (name, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
		s.name, body)
	if err != nil {
		return fmt.Errorf("save document %q: %w", s.name, err)
	}
	return nil
}
