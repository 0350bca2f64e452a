// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. SQLite understands the same ON CONFLICT ... DO UPDATE form as
// Postgres (3.24+) and RETURNING (3.35+), which modernc.org/sqlite provides,
// so the upsert shape matches the Postgres backend with ? placeholders.
//
// The backend is mainly useful for local runs and tests; the DSN is a file
// path or a "file:..." URI.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3

	"unietl/internal/storage"
	"unietl/pkg/records"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN)
	})
	storage.RegisterDDL("sqlite", ensureSchema)
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens the SQLite database at dsn.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Single writer; avoids SQLITE_BUSY under the per-record transactions.
	db.SetMaxOpenConns(1)
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")
	return &Repository{db: db}, nil
}

// UpsertRow inserts rec or overwrites the non-key columns on conflict, inside
// its own transaction.
func (r *Repository) UpsertRow(ctx context.Context, spec storage.TableSpec, rec records.Record) (int64, error) {
	args := make([]any, len(spec.Columns))
	for i, c := range spec.Columns {
		args[i] = rec[c]
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, upsertSQL(spec), args...).Scan(&id); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: upsert %s: %w", spec.Table, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit %s: %w", spec.Table, err)
	}
	return id, nil
}

// Exec implements storage.Repository.Exec.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	_, err := r.db.ExecContext(ctx, stmt)
	return err
}

// Ping implements storage.Repository.Ping.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database handle.
func (r *Repository) Close() { _ = r.db.Close() }

func upsertSQL(spec storage.TableSpec) string {
	placeholders := make([]string, len(spec.Columns))
	for i := range spec.Columns {
		placeholders[i] = "?"
	}

	keys := make(map[string]struct{}, len(spec.KeyColumns))
	for _, k := range spec.KeyColumns {
		keys[k] = struct{}{}
	}
	var updates []string
	for _, c := range spec.Columns {
		if _, isKey := keys[c]; isKey {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", ident(c), ident(c)))
	}
	if len(updates) == 0 {
		k := spec.KeyColumns[0]
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", ident(k), ident(k)))
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING %s",
		ident(spec.Table),
		strings.Join(idents(spec.Columns), ", "),
		strings.Join(placeholders, ", "),
		strings.Join(idents(spec.KeyColumns), ", "),
		strings.Join(updates, ", "),
		ident(spec.IDColumn),
	)
}

func ident(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func idents(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = ident(c)
	}
	return out
}
