// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and go-sql-driver. MySQL has no RETURNING, so the upsert uses
// INSERT ... ON DUPLICATE KEY UPDATE with the LAST_INSERT_ID(id) trick to
// surface the surrogate id of the updated row.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"unietl/internal/storage"
	"unietl/pkg/records"
)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN)
	})
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a MySQL connection pool for dsn
// (user:pass@tcp(host:port)/dbname form).
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	return &Repository{db: db}, nil
}

// UpsertRow inserts rec or overwrites the non-key columns when the natural
// key collides, inside its own transaction.
func (r *Repository) UpsertRow(ctx context.Context, spec storage.TableSpec, rec records.Record) (int64, error) {
	args := make([]any, len(spec.Columns))
	for i, c := range spec.Columns {
		args[i] = rec[c]
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin: %w", err)
	}
	res, err := tx.ExecContext(ctx, upsertSQL(spec), args...)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mysql: upsert %s: %w", spec.Table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mysql: upsert %s: last insert id: %w", spec.Table, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit %s: %w", spec.Table, err)
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

// Close closes the connection pool.
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
	// id = LAST_INSERT_ID(id) makes LastInsertId report the existing row's id
	// when the statement takes the update path.
	updates := []string{fmt.Sprintf("%s = LAST_INSERT_ID(%s)", ident(spec.IDColumn), ident(spec.IDColumn))}
	for _, c := range spec.Columns {
		if _, isKey := keys[c]; isKey {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", ident(c), ident(c)))
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		ident(spec.Table),
		strings.Join(idents(spec.Columns), ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
}

func ident(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

func idents(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = ident(c)
	}
	return out
}
