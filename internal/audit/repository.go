// Package audit keeps a local append-only trail of ledger updates, fed by the
// worker from the event queue. It is observational only and plays no part in
// the ledger invariants.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded ledger update.
type Entry struct {
	ID          int64
	Year        string
	CohortYear  int
	TotalRupiah int64
	Actor       string
	RecordedAt  time.Time
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
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

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Record appends an entry. Redelivered events dedupe on
// (year, cohort_year, recorded_at), so recording is idempotent.
func (r *Repository) Record(ctx context.Context, e Entry) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO ledger_audit (year, cohort_year, total_rupiah, actor, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Year, e.CohortYear, e.TotalRupiah, e.Actor, e.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.DebugContext(ctx, "Duplicate audit entry ignored",
			"year", e.Year,
			"cohort_year", e.CohortYear)
		return nil
	}

	slog.InfoContext(ctx, "Audit entry recorded",
		"year", e.Year,
		"cohort_year", e.CohortYear,
		"total_rupiah", e.TotalRupiah,
		"actor", e.Actor)
	return nil
}

// ListRecent returns the newest entries, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, year, cohort_year, total_rupiah, actor, recorded_at
		 FROM ledger_audit ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.Year, &e.CohortYear, &e.TotalRupiah, &e.Actor, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			e.RecordedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
