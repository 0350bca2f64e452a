// Package postgres implements the Postgres repository using pgx v5. Each
// upsert runs in its own transaction: INSERT ... ON CONFLICT (natural key)
// DO UPDATE ... RETURNING <id>.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"unietl/internal/storage"
	"unietl/pkg/records"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN)
	})
	storage.RegisterDDL("postgres", ensureSchema)
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository opens a pgx pool for the given DSN.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// UpsertRow inserts rec, overwriting all non-key columns when the natural key
// already exists. The statement runs inside its own transaction so a rejected
// record rolls back cleanly and the caller can continue with the next one.
func (r *Repository) UpsertRow(ctx context.Context, spec storage.TableSpec, rec records.Record) (int64, error) {
	sql := upsertSQL(spec)
	args := make([]any, len(spec.Columns))
	for i, c := range spec.Columns {
		args[i] = rec[c]
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		_ = tx.Rollback(ctx)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return 0, fmt.Errorf("upsert %s: %s (%s)", spec.Table, pgErr.Detail, pgErr.SQLState())
		}
		return 0, fmt.Errorf("upsert %s: %w", spec.Table, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit %s: %w", spec.Table, err)
	}
	return id, nil
}

// Exec implements storage.Repository.Exec.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.pool.Exec(ctx, sql)
	return err
}

// Ping implements storage.Repository.Ping.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the pool.
func (r *Repository) Close() { r.pool.Close() }

// upsertSQL renders the INSERT ... ON CONFLICT statement for spec.
func upsertSQL(spec storage.TableSpec) string {
	placeholders := make([]string, len(spec.Columns))
	for i := range spec.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	updates := updateColumns(spec)
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) ",
		pgIdent(spec.Table),
		strings.Join(mapIdent(spec.Columns), ", "),
		strings.Join(placeholders, ", "),
		strings.Join(mapIdent(spec.KeyColumns), ", "),
	)
	fmt.Fprintf(&b, "DO UPDATE SET %s RETURNING %s",
		strings.Join(updates, ", "), pgIdent(spec.IDColumn))
	return b.String()
}

// updateColumns generates "col = EXCLUDED.col" for every non-key column. When
// a table has only key columns, a no-op key update keeps RETURNING working.
func updateColumns(spec storage.TableSpec) []string {
	keys := make(map[string]struct{}, len(spec.KeyColumns))
	for _, k := range spec.KeyColumns {
		keys[k] = struct{}{}
	}
	var updates []string
	for _, c := range spec.Columns {
		if _, isKey := keys[c]; isKey {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", pgIdent(c), pgIdent(c)))
	}
	if len(updates) == 0 {
		k := spec.KeyColumns[0]
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", pgIdent(k), pgIdent(k)))
	}
	return updates
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return out
}
