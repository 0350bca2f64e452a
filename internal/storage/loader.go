package storage

import (
	"context"
	"fmt"
	"log"

	"unietl/pkg/records"
)

// LoadStats accumulates per-record outcomes across every entity loaded in a
// run. Field names match the load report JSON.
type LoadStats struct {
	Inserted int `json:"inserted"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// RecordResult is the explicit outcome of one upsert: the surrogate id on
// success, or the reason the record was rejected. Expected per-record
// failures travel as values, not as errors unwinding the load.
type RecordResult struct {
	ID  int64
	Err error
}

// Loader owns the database connection for the lifetime of one pipeline run
// and drives natural-key upserts table by table.
type Loader struct {
	repo  Repository
	stats LoadStats
}

func NewLoader() *Loader { return &Loader{} }

// Connect opens the configured backend and verifies it with a ping.
func (l *Loader) Connect(ctx context.Context, cfg Config) error {
	repo, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	if err := repo.Ping(ctx); err != nil {
		repo.Close()
		return fmt.Errorf("storage: ping %s: %w", cfg.Kind, err)
	}
	l.repo = repo
	log.Printf("storage: connected kind=%s", cfg.Kind)
	return nil
}

// Close releases the connection. Safe to call when never connected, so the
// orchestrator can defer it unconditionally.
func (l *Loader) Close() {
	if l.repo == nil {
		return
	}
	l.repo.Close()
	l.repo = nil
	log.Printf("storage: disconnected")
}

// Repo exposes the underlying repository for schema bootstrap.
func (l *Loader) Repo() Repository { return l.repo }

// Load upserts rows into the entity's table one record at a time. A record
// missing its natural key is skipped; a record the database rejects is rolled
// back, counted as failed, and the loop continues. A failure that leaves the
// connection unusable aborts the load, as does cancellation.
func (l *Loader) Load(ctx context.Context, entity string, rows []records.Record) error {
	if l.repo == nil {
		return fmt.Errorf("storage: load %s: not connected", entity)
	}
	spec, ok := Tables[entity]
	if !ok {
		return fmt.Errorf("storage: load: unknown entity %q", entity)
	}
	log.Printf("load %s: %d records", entity, len(rows))

	inserted, failed, skipped := 0, 0, 0
	defer func() {
		l.stats.Inserted += inserted
		l.stats.Failed += failed
		l.stats.Skipped += skipped
		log.Printf("load %s: inserted=%d failed=%d skipped=%d", entity, inserted, failed, skipped)
	}()

	for i, rec := range rows {
		if missingKey(spec, rec) {
			skipped++
			continue
		}
		res := l.upsertOne(ctx, spec, rec)
		if res.Err == nil {
			inserted++
			continue
		}
		if ctx.Err() != nil {
			return fmt.Errorf("storage: load %s: %w", entity, ctx.Err())
		}
		// Distinguish a rejected record from a dead connection.
		if pingErr := l.repo.Ping(ctx); pingErr != nil {
			return fmt.Errorf("storage: load %s: connection lost: %w", entity, res.Err)
		}
		failed++
		log.Printf("load %s: record %d failed: %v", entity, i, res.Err)
	}
	return nil
}

// Stats returns the cumulative counters for the run.
func (l *Loader) Stats() LoadStats { return l.stats }

func (l *Loader) upsertOne(ctx context.Context, spec TableSpec, rec records.Record) RecordResult {
	id, err := l.repo.UpsertRow(ctx, spec, rec)
	if err != nil {
		return RecordResult{Err: err}
	}
	return RecordResult{ID: id}
}

func missingKey(spec TableSpec, rec records.Record) bool {
	for _, k := range spec.KeyColumns {
		v, ok := rec[k]
		if !ok || v == nil {
			return true
		}
	}
	return false
}
