// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package metarepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/northbound/inkstream/internal/usecase"
)

// Store persists SourceMeta rows to a source_metas table. It is exposed
// for completeness and for the (non-goal) upload surface's tests; no
// worker calls it.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at path and ensures the
// source_metas schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("metarepo: opening %s: %w", path, err)
	}
	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS source_metas (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		initial_name TEXT NOT NULL,
		object_store_name TEXT NOT NULL,
		source_type TEXT NOT NULL,
		added_at TEXT NOT NULL,
		extracted_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_source_metas_object_store_name ON source_metas(object_store_name);
	`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("metarepo: initializing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Add inserts meta within tx, the only way a source_metas row is created.
func (s *Store) Add(ctx context.Context, tx *sql.Tx, meta usecase.SourceMeta) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO source_metas (id, user_id, initial_name, object_store_name, source_type, added_at, extracted_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		meta.ID, meta.UserID, meta.InitialName, meta.ObjectStoreName, meta.SourceType,
		meta.AddedAt.Format(time.RFC3339), nullableTime(meta.ExtractedAt),
	)
	if err != nil {
		return fmt.Errorf("metarepo: inserting source_meta %s: %w", meta.ID, err)
	}
	return nil
}

// MarkExtracted stamps ExtractedAt for id. No worker calls it; the
// Extraction use-case does not update source_metas.
func (s *Store) MarkExtracted(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE source_metas SET extracted_at = ? WHERE id = ?",
		at.Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("metarepo: marking source_meta %s extracted: %w", id, err)
	}
	return nil
}

// BeginTx starts a transaction for a caller that wants to pair Add with
// other writes atomically.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// Get fetches a single SourceMeta by id, used by tests and the
// (non-goal) upload surface to confirm a write landed.
func (s *Store) Get(ctx context.Context, id string) (usecase.SourceMeta, error) {
	var meta usecase.SourceMeta
	var addedAt string
	var extractedAt sql.NullString
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, initial_name, object_store_name, source_type, added_at, extracted_at FROM source_metas WHERE id = ?", id,
	)
	if err := row.Scan(&meta.ID, &meta.UserID, &meta.InitialName, &meta.ObjectStoreName, &meta.SourceType, &addedAt, &extractedAt); err != nil {
		if err == sql.ErrNoRows {
			return usecase.SourceMeta{}, fmt.Errorf("metarepo: source_meta %s: %w", id, err)
		}
		return usecase.SourceMeta{}, fmt.Errorf("metarepo: scanning source_meta %s: %w", id, err)
	}
	parsed, err := time.Parse(time.RFC3339, addedAt)
	if err != nil {
		return usecase.SourceMeta{}, fmt.Errorf("metarepo: parsing added_at for %s: %w", id, err)
	}
	meta.AddedAt = parsed
	if extractedAt.Valid {
		t, err := time.Parse(time.RFC3339, extractedAt.String)
		if err != nil {
			return usecase.SourceMeta{}, fmt.Errorf("metarepo: parsing extracted_at for %s: %w", id, err)
		}
		meta.ExtractedAt = &t
	}
	return meta, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
