// Package postgres implements memstore.Store on PostgreSQL. Documents live in
// a single records table with jsonb metadata; search uses the built-in
// full-text ranking rather than vectors.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lucidia/lucid-server/internal/memstore"
	"github.com/lucidia/lucid-server/internal/model"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Store backed directly by database/sql.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

// New opens the DSN and ensures the schema exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

type Store struct{ db *sql.DB }

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS memory_records (
            id          UUID PRIMARY KEY,
            category    TEXT NOT NULL,
            document    TEXT NOT NULL,
            metadata    JSONB NOT NULL DEFAULT '{}',
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
        );
        CREATE INDEX IF NOT EXISTS memory_records_category_idx
            ON memory_records (category, creation_time);
        CREATE INDEX IF NOT EXISTS memory_records_document_fts_idx
            ON memory_records USING GIN (to_tsvector('english', document));
    `)
	return err
}

func (s *Store) Create(ctx context.Context, category, document string, metadata map[string]interface{}) (string, error) {
	id := uuid.New().String()
	meta, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO memory_records (id, category, document, metadata)
        VALUES ($1,$2,$3,$4)
    `, id, category, document, meta)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, category, id string) (*memstore.Record, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, document, metadata FROM memory_records
        WHERE category=$1 AND id=$2
    `, category, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return rec, err
}

func (s *Store) List(ctx context.Context, category string, limit int) ([]memstore.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, document, metadata FROM memory_records
        WHERE category=$1 ORDER BY creation_time LIMIT $2
    `, category, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectRecords(rows)
}

func (s *Store) Search(ctx context.Context, category, query string, limit int) ([]memstore.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, document, metadata FROM memory_records
        WHERE category=$1
          AND to_tsvector('english', document) @@ plainto_tsquery('english', $2)
        ORDER BY ts_rank(to_tsvector('english', document), plainto_tsquery('english', $2)) DESC
        LIMIT $3
    `, category, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectRecords(rows)
}

func (s *Store) UpdateMetadata(ctx context.Context, category, id string, metadata map[string]interface{}) error {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
        UPDATE memory_records SET metadata=$3
        WHERE category=$1 AND id=$2
    `, category, id, meta)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, category, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
        DELETE FROM memory_records WHERE category=$1 AND id=$2
    `, category, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func scanRecord(row *sql.Row) (*memstore.Record, error) {
	var rec memstore.Record
	var meta []byte
	if err := row.Scan(&rec.ID, &rec.Document, &meta); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]memstore.Record, error) {
	out := []memstore.Record{}
	for rows.Next() {
		var rec memstore.Record
		var meta []byte
		if err := rows.Scan(&rec.ID, &rec.Document, &meta); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
