// Package store persists the raw document registry in PostgreSQL so the
// in-memory engine can be rebuilt on startup. Only raw documents are
// stored; the index itself is never persisted.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/RaphScript0/mini-engine/internal/engine"
	"github.com/RaphScript0/mini-engine/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	metadata   JSONB,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Documents is the PostgreSQL-backed document registry.
type Documents struct {
	db     *postgres.Client
	logger *slog.Logger
}

// New creates a Documents store on the given client.
func New(db *postgres.Client) *Documents {
	return &Documents{
		db:     db,
		logger: slog.Default().With("component", "document-store"),
	}
}

// EnsureSchema creates the documents table if missing.
func (s *Documents) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	return nil
}

// Save upserts docs in one transaction.
func (s *Documents) Save(ctx context.Context, docs []engine.Document) error {
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO documents (id, body, metadata, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (id) DO UPDATE
			SET body = EXCLUDED.body, metadata = EXCLUDED.metadata, updated_at = now()`)
		if err != nil {
			return fmt.Errorf("preparing upsert: %w", err)
		}
		defer stmt.Close()

		for _, doc := range docs {
			var meta any
			if doc.Metadata != nil {
				data, err := json.Marshal(doc.Metadata)
				if err != nil {
					return fmt.Errorf("marshaling metadata for %s: %w", doc.ID, err)
				}
				meta = data
			}
			if _, err := stmt.ExecContext(ctx, doc.ID, doc.Text, meta); err != nil {
				return fmt.Errorf("upserting document %s: %w", doc.ID, err)
			}
		}
		return nil
	})
}

// Delete removes one document; absent ids succeed.
func (s *Documents) Delete(ctx context.Context, id string) error {
	if _, err := s.db.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	return nil
}

// LoadAll returns every persisted document for engine warm-up.
func (s *Documents) LoadAll(ctx context.Context) ([]engine.Document, error) {
	rows, err := s.db.DB.QueryContext(ctx, `SELECT id, body, metadata FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []engine.Document
	for rows.Next() {
		var doc engine.Document
		var meta sql.NullString
		if err := rows.Scan(&doc.ID, &doc.Text, &meta); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		if meta.Valid {
			if err := json.Unmarshal([]byte(meta.String), &doc.Metadata); err != nil {
				s.logger.Warn("skipping malformed metadata", "id", doc.ID, "error", err)
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}
	return docs, nil
}

// Ping checks connectivity for health reporting.
func (s *Documents) Ping(ctx context.Context) error {
	return s.db.DB.PingContext(ctx)
}
