// Package mssql implements a SQL Server-backed storage.Repository using
// database/sql and go-mssqldb. SQL Server has neither ON CONFLICT nor ON
// DUPLICATE KEY, so the upsert is a MERGE with OUTPUT inserted.<id>.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"unietl/internal/storage"
	"unietl/pkg/records"
)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN)
	})
}

// Repository is a SQL Server-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a connection pool for dsn (sqlserver://... form).
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	return &Repository{db: db}, nil
}

// UpsertRow runs the MERGE for rec inside its own transaction.
func (r *Repository) UpsertRow(ctx context.Context, spec storage.TableSpec, rec records.Record) (int64, error) {
	args := make([]any, len(spec.Columns))
	for i, c := range spec.Columns {
		args[i] = rec[c]
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin: %w", err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, mergeSQL(spec), args...).Scan(&id); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mssql: upsert %s: %w", spec.Table, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit %s: %w", spec.Table, err)
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

// mergeSQL renders the MERGE upsert for spec. The source row is a single
// VALUES tuple bound to @p1..@pN in column order.
func mergeSQL(spec storage.TableSpec) string {
	placeholders := make([]string, len(spec.Columns))
	for i := range spec.Columns {
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
	}

	keys := make(map[string]struct{}, len(spec.KeyColumns))
	on := make([]string, 0, len(spec.KeyColumns))
	for _, k := range spec.KeyColumns {
		keys[k] = struct{}{}
		on = append(on, fmt.Sprintf("T.%s = S.%s", ident(k), ident(k)))
	}

	var updates []string
	for _, c := range spec.Columns {
		if _, isKey := keys[c]; isKey {
			continue
		}
		updates = append(updates, fmt.Sprintf("T.%s = S.%s", ident(c), ident(c)))
	}
	if len(updates) == 0 {
		k := spec.KeyColumns[0]
		updates = append(updates, fmt.Sprintf("T.%s = S.%s", ident(k), ident(k)))
	}

	srcCols := idents(spec.Columns)
	insertVals := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		insertVals[i] = "S." + ident(c)
	}

	return fmt.Sprintf(
		`MERGE %s AS T
USING (VALUES (%s)) AS S (%s)
ON %s
WHEN MATCHED THEN UPDATE SET %s
WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)
OUTPUT inserted.%s;`,
		ident(spec.Table),
		strings.Join(placeholders, ", "),
		strings.Join(srcCols, ", "),
		strings.Join(on, " AND "),
		strings.Join(updates, ", "),
		strings.Join(srcCols, ", "),
		strings.Join(insertVals, ", "),
		ident(spec.IDColumn),
	)
}

func ident(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

func idents(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = ident(c)
	}
	return out
}
