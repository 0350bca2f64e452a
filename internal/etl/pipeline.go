// Package etl orchestrates one pipeline run: extract datasets from the
// configured source, transform each into a cleaned entity batch, upsert the
// batches in dependency order, and write the run reports.
package etl

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"unietl/internal/extract"
	"unietl/internal/metrics"
	"unietl/internal/storage"
	"unietl/internal/transform"
	"unietl/pkg/records"
)

// entityOps binds an entity to its transform and target table.
type entityOps struct {
	transform transform.Func
	table     string
}

// entities is the registry consulted once per dataset after table inference.
// Datasets inferring to anything else are logged and skipped.
var entities = map[string]entityOps{
	"department": {transform.Departments, "department"},
	"student":    {transform.Students, "student"},
	"course":     {transform.Courses, "course"},
	"instructor": {transform.Instructors, "instructor"},
	"classroom":  {transform.Classrooms, "classroom"},
	"schedule":   {transform.Schedules, "schedule"},
	"enrollment": {transform.Enrollments, "enrollment"},
}

// connectLoaderFn is a seam for tests.
var connectLoaderFn = func(ctx context.Context, cfg storage.Config) (*storage.Loader, error) {
	l := storage.NewLoader()
	if err := l.Connect(ctx, cfg); err != nil {
		return nil, err
	}
	return l, nil
}

// Pipeline is one configured run. Zero-value fields mean "no filter" /
// "no override".
type Pipeline struct {
	// Job names the run for metrics.
	Job string

	// Source produces the input datasets.
	Source extract.Extractor

	// Storage selects and configures the database backend.
	Storage storage.Config

	// Tables, when non-empty, keeps only datasets whose name or inferred
	// entity is listed.
	Tables []string

	// Entity forces every dataset to one entity, bypassing inference.
	Entity string

	// InitDB creates the schema before loading, for backends that ship DDL.
	InitDB bool

	// ReportsDir receives the validation and load reports. Empty disables
	// report files.
	ReportsDir string
}

// Run executes the phases strictly in order. The loader is closed whether or
// not the run succeeds.
func (p *Pipeline) Run(ctx context.Context) error {
	loader, err := connectLoaderFn(ctx, p.Storage)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer loader.Close()

	if p.InitDB {
		if err := storage.EnsureSchema(ctx, p.Storage.Kind, loader.Repo()); err != nil {
			return fmt.Errorf("init db: %w", err)
		}
		log.Printf("schema ready kind=%s", p.Storage.Kind)
	}

	// EXTRACT
	start := time.Now()
	datasets, err := p.Source.Extract(ctx)
	metrics.RecordStep(p.Job, "extract", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	log.Printf("extract: %d datasets", len(datasets))

	// TRANSFORM
	start = time.Now()
	var (
		total     transform.Stats
		rowErrors []transform.RowError
		cleaned   = map[string][]records.Record{}
	)
	for _, ds := range datasets {
		entity := InferTable(ds.Name, ds.Columns, p.Entity)
		if !p.wantDataset(ds.Name, entity) {
			log.Printf("transform: dataset %q filtered out", ds.Name)
			continue
		}
		ops, ok := entities[entity]
		if !ok {
			log.Printf("transform: dataset %q: unknown entity %q, skipping", ds.Name, entity)
			continue
		}
		res := ops.transform(ds.Rows)
		total.Add(res.Stats)
		rowErrors = append(rowErrors, res.Errors...)
		cleaned[ops.table] = append(cleaned[ops.table], res.Rows...)

		metrics.RecordRows(p.Job, entity, "total", int64(res.Stats.Total))
		metrics.RecordRows(p.Job, entity, "valid", int64(res.Stats.Valid))
		metrics.RecordRows(p.Job, entity, "invalid", int64(res.Stats.Invalid))
		metrics.RecordRows(p.Job, entity, "duplicates_removed", int64(res.Stats.DuplicatesRemoved))
	}
	metrics.RecordStep(p.Job, "transform", nil, time.Since(start))
	log.Printf("transform: total=%d valid=%d invalid=%d duplicates_removed=%d",
		total.Total, total.Valid, total.Invalid, total.DuplicatesRemoved)

	// LOAD, parents before children
	start = time.Now()
	perTable := map[string]storage.LoadStats{}
	var loadErr error
	for _, entity := range storage.LoadOrder {
		rows := cleaned[entity]
		if len(rows) == 0 {
			continue
		}
		before := loader.Stats()
		if loadErr = loader.Load(ctx, entity, rows); loadErr != nil {
			break
		}
		after := loader.Stats()
		stats := storage.LoadStats{
			Inserted: after.Inserted - before.Inserted,
			Failed:   after.Failed - before.Failed,
			Skipped:  after.Skipped - before.Skipped,
		}
		perTable[entity] = stats
		metrics.RecordRows(p.Job, entity, "inserted", int64(stats.Inserted))
		metrics.RecordRows(p.Job, entity, "failed", int64(stats.Failed))
		metrics.RecordRows(p.Job, entity, "skipped", int64(stats.Skipped))
	}
	metrics.RecordStep(p.Job, "load", loadErr, time.Since(start))
	if loadErr != nil {
		return fmt.Errorf("load: %w", loadErr)
	}

	// REPORT
	start = time.Now()
	err = p.writeReports(total, rowErrors, perTable, loader.Stats())
	metrics.RecordStep(p.Job, "report", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	ls := loader.Stats()
	log.Printf("done: inserted=%d failed=%d skipped=%d", ls.Inserted, ls.Failed, ls.Skipped)
	return nil
}

func (p *Pipeline) wantDataset(name, entity string) bool {
	if len(p.Tables) == 0 {
		return true
	}
	for _, t := range p.Tables {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == entity || t == strings.ToLower(name) {
			return true
		}
	}
	return false
}
