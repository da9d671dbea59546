// Package sqlite stores documents as JSON rows in a local SQLite database.
// It is the self-hosted alternative to the Firestore backend.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"iuran/internal/docstore"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

var _ docstore.Store = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND doc_id = ?`,
		collection, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query document %s/%s: %w", collection, id, err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, false, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	return docstore.NormalizeNumbers(doc).(map[string]any), true, nil
}

func (s *Store) SetMerge(ctx context.Context, collection, id string, partial docstore.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin merge tx: %w", err)
	}
	defer tx.Rollback()

	current := map[string]any{}
	var body string
	err = tx.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND doc_id = ?`,
		collection, id,
	).Scan(&body)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// new document
	case err != nil:
		return fmt.Errorf("read document %s/%s: %w", collection, id, err)
	default:
		if err := json.Unmarshal([]byte(body), &current); err != nil {
			return fmt.Errorf("decode document %s/%s: %w", collection, id, err)
		}
		current = docstore.NormalizeNumbers(current).(map[string]any)
	}

	merged := docstore.Merge(current, partial)
	encoded, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (collection, doc_id, body, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, doc_id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		collection, id, string(encoded), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert document %s/%s: %w", collection, id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge: %w", err)
	}

	slog.DebugContext(ctx, "Document merged",
		"collection", collection,
		"doc_id", id,
		"bytes", len(encoded))
	return nil
}
