// Package extract turns external tabular sources into in-memory datasets.
//
// Each source kind (csv, json, excel, sheets) implements Extractor. All
// extractors canonicalize header names so the downstream transforms can rely
// on snake_case column keys regardless of how a spreadsheet author spelled
// them.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"unietl/pkg/records"
)

// Extractor reads one source and returns its datasets. File sources yield a
// single dataset; workbook sources yield one dataset per sheet or top-level
// key.
type Extractor interface {
	Extract(ctx context.Context) ([]records.Dataset, error)
}

// ForFile picks an extractor for path based on its extension.
func ForFile(path string) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVFile(path), nil
	case ".json":
		return NewJSONFile(path), nil
	case ".xlsx", ".xlsm":
		return NewExcelFile(path, ""), nil
	default:
		return nil, fmt.Errorf("extract: unsupported file type %q", filepath.Ext(path))
	}
}

// datasetName derives a dataset name from a file path, e.g.
// "data/students.csv" becomes "students".
func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// zipRow pairs headers with one raw row. Short rows leave trailing columns
// unset; extra cells beyond the header are dropped.
func zipRow(headers []string, cells []string) records.Record {
	rec := make(records.Record, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(cells) {
			v := strings.TrimSpace(cells[i])
			if v == "" {
				rec[h] = nil
			} else {
				rec[h] = v
			}
		} else {
			rec[h] = nil
		}
	}
	return rec
}
