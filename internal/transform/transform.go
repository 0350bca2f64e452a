// Package transform implements the per-entity transform stage: deduplication
// by natural key, field validation, and cleaning of raw rows into records
// ready for upsert.
//
// Each transform call is pure with respect to run state: it returns its own
// Stats value and error list, and the orchestrator merges them across entity
// types. There are no shared counters.
package transform

import (
	"encoding/json"
	"time"

	"unietl/pkg/records"
)

// Stats counts the outcome of one or more transform calls. Fields carry the
// JSON names used in the validation report.
type Stats struct {
	Total             int `json:"total_records"`
	Valid             int `json:"valid_records"`
	Invalid           int `json:"invalid_records"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// Add merges o into s.
func (s *Stats) Add(o Stats) {
	s.Total += o.Total
	s.Valid += o.Valid
	s.Invalid += o.Invalid
	s.DuplicatesRemoved += o.DuplicatesRemoved
}

// RowError records every validation message collected for one rejected row.
// Field names the natural-key column the Key value came from ("email",
// "dept_code"); composite-key entities use "key".
type RowError struct {
	Table  string
	Row    int
	Field  string
	Key    string
	Errors []string
}

// MarshalJSON emits the natural key under its column name, so a department
// error carries "dept_code" and a student error carries "email".
func (e RowError) MarshalJSON() ([]byte, error) {
	field := e.Field
	if field == "" {
		field = "key"
	}
	return json.Marshal(map[string]any{
		"table":  e.Table,
		"row":    e.Row,
		field:    e.Key,
		"errors": e.Errors,
	})
}

// Result is the output of transforming one dataset.
type Result struct {
	Rows   []records.Record
	Stats  Stats
	Errors []RowError
}

// Func is the signature shared by all entity transforms.
type Func func(rows []records.Record) Result

// Report is the end-of-run validation report serialized to
// reports/validation_report_<ts>.json.
type Report struct {
	Timestamp  string     `json:"timestamp"`
	Statistics Stats      `json:"statistics"`
	Errors     []RowError `json:"errors"`
}

// NewReport stamps a report with the current time. A nil error slice is
// normalized to an empty one so the JSON field is always an array.
func NewReport(s Stats, errs []RowError) Report {
	if errs == nil {
		errs = []RowError{}
	}
	return Report{
		Timestamp:  time.Now().Format(time.RFC3339),
		Statistics: s,
		Errors:     errs,
	}
}
