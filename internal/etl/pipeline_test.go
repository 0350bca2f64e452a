package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"unietl/internal/storage"
	"unietl/internal/transform"
	"unietl/pkg/records"
)

type fakeSource struct {
	datasets []records.Dataset
	err      error
}

func (f *fakeSource) Extract(ctx context.Context) ([]records.Dataset, error) {
	return f.datasets, f.err
}

type orderRepo struct {
	order  []string
	nextID int64
}

func (r *orderRepo) UpsertRow(ctx context.Context, spec storage.TableSpec, rec records.Record) (int64, error) {
	r.order = append(r.order, spec.Table)
	r.nextID++
	return r.nextID, nil
}

func (r *orderRepo) Exec(ctx context.Context, sql string) error { return nil }
func (r *orderRepo) Ping(ctx context.Context) error             { return nil }
func (r *orderRepo) Close()                                     {}

func registerRepo(t *testing.T, repo storage.Repository) storage.Config {
	t.Helper()
	storage.Register("fake", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return repo, nil
	})
	return storage.Config{Kind: "fake"}
}

func fixtureDatasets() []records.Dataset {
	return []records.Dataset{
		// Students listed before departments on purpose; the load phase must
		// still write parents first.
		{
			Name:    "Students",
			Columns: []string{"email", "date_of_birth", "enrollment_year"},
			Rows: []records.Record{
				{"first_name": "Ada", "last_name": "L", "email": "ada@x.edu",
					"date_of_birth": "2000-01-01", "enrollment_year": "2020"},
			},
		},
		{
			Name:    "Departments",
			Columns: []string{"dept_code", "dept_name"},
			Rows: []records.Record{
				{"dept_code": "CS", "dept_name": "Computer Science"},
			},
		},
	}
}

func TestRunLoadsParentsFirst(t *testing.T) {
	repo := &orderRepo{}
	p := &Pipeline{
		Job:        "test",
		Source:     &fakeSource{datasets: fixtureDatasets()},
		Storage:    registerRepo(t, repo),
		ReportsDir: filepath.Join(t.TempDir(), "reports"),
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"department", "student"}
	if strings.Join(repo.order, ",") != strings.Join(want, ",") {
		t.Fatalf("load order = %v, want %v", repo.order, want)
	}
}

func TestRunWritesReports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	p := &Pipeline{
		Job:        "test",
		Source:     &fakeSource{datasets: fixtureDatasets()},
		Storage:    registerRepo(t, &orderRepo{}),
		ReportsDir: dir,
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	validation, err := filepath.Glob(filepath.Join(dir, "validation_report_*.json"))
	if err != nil || len(validation) != 1 {
		t.Fatalf("validation reports = %v (%v)", validation, err)
	}
	loads, err := filepath.Glob(filepath.Join(dir, "load_report_*.json"))
	if err != nil || len(loads) != 1 {
		t.Fatalf("load reports = %v (%v)", loads, err)
	}

	data, err := os.ReadFile(validation[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var rep transform.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Statistics.Total != 2 || rep.Statistics.Valid != 2 {
		t.Fatalf("statistics = %+v", rep.Statistics)
	}
	if rep.Errors == nil {
		t.Fatal("errors serialized as null, want array")
	}

	data, err = os.ReadFile(loads[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var lr LoadReport
	if err := json.Unmarshal(data, &lr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lr.Totals.Inserted != 2 {
		t.Fatalf("totals = %+v", lr.Totals)
	}
	if lr.Tables["student"].Inserted != 1 || lr.Tables["department"].Inserted != 1 {
		t.Fatalf("tables = %+v", lr.Tables)
	}
}

func TestRunTableFilter(t *testing.T) {
	repo := &orderRepo{}
	p := &Pipeline{
		Job:     "test",
		Source:  &fakeSource{datasets: fixtureDatasets()},
		Storage: registerRepo(t, repo),
		Tables:  []string{"department"},
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(repo.order) != 1 || repo.order[0] != "department" {
		t.Fatalf("order = %v, want only department", repo.order)
	}
}

func TestRunSkipsUnknownEntity(t *testing.T) {
	repo := &orderRepo{}
	p := &Pipeline{
		Job: "test",
		Source: &fakeSource{datasets: []records.Dataset{
			{Name: "Widgets", Columns: []string{"foo"}, Rows: []records.Record{{"foo": "bar"}}},
		}},
		Storage: registerRepo(t, repo),
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(repo.order) != 0 {
		t.Fatalf("order = %v, want no upserts", repo.order)
	}
}

func TestRunExtractFailureIsFatal(t *testing.T) {
	p := &Pipeline{
		Job:     "test",
		Source:  &fakeSource{err: fmt.Errorf("boom")},
		Storage: registerRepo(t, &orderRepo{}),
	}
	if err := p.Run(context.Background()); err == nil {
		t.Fatal("want error from failing source")
	}
}

func TestRunExplicitEntityOverride(t *testing.T) {
	repo := &orderRepo{}
	p := &Pipeline{
		Job: "test",
		Source: &fakeSource{datasets: []records.Dataset{
			{
				Name:    "Anything",
				Columns: []string{"dept_code", "dept_name"},
				Rows:    []records.Record{{"dept_code": "EE", "dept_name": "Electrical"}},
			},
		}},
		Storage: registerRepo(t, repo),
		Entity:  "department",
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(repo.order) != 1 || repo.order[0] != "department" {
		t.Fatalf("order = %v", repo.order)
	}
}
