package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"unietl/pkg/records"
)

// JSONFile extracts datasets from a JSON document. Two shapes are accepted:
// a top-level array of objects, which becomes a single dataset named "data",
// and a top-level object mapping names to arrays of objects, which becomes
// one dataset per key. Numbers are decoded as json.Number so integer ids are
// not mangled by float64 conversion.
type JSONFile struct {
	Path string
}

// NewJSONFile returns an extractor for the JSON document at path.
func NewJSONFile(path string) *JSONFile { return &JSONFile{Path: path} }

// Extract implements Extractor.
func (j *JSONFile) Extract(ctx context.Context) ([]records.Dataset, error) {
	f, err := os.Open(j.Path)
	if err != nil {
		return nil, fmt.Errorf("extract json: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("extract json %s: %w", j.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch v := doc.(type) {
	case []any:
		ds, err := objectsToDataset("data", v)
		if err != nil {
			return nil, fmt.Errorf("extract json %s: %w", j.Path, err)
		}
		return []records.Dataset{ds}, nil
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]records.Dataset, 0, len(names))
		for _, name := range names {
			arr, ok := v[name].([]any)
			if !ok {
				return nil, fmt.Errorf("extract json %s: key %q is not an array", j.Path, name)
			}
			ds, err := objectsToDataset(name, arr)
			if err != nil {
				return nil, fmt.Errorf("extract json %s: key %q: %w", j.Path, name, err)
			}
			out = append(out, ds)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("extract json %s: expected array or object at top level, got %T", j.Path, doc)
	}
}

// objectsToDataset converts a decoded array of objects into a dataset with
// canonical column keys. Keys are visited in sorted order so the column set
// is stable across runs.
func objectsToDataset(name string, arr []any) (records.Dataset, error) {
	ds := records.Dataset{Name: name}
	seen := make(map[string]struct{})
	for i, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			return records.Dataset{}, fmt.Errorf("element %d is not an object", i)
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		rec := make(records.Record, len(obj))
		for _, k := range keys {
			ck := CanonicalHeader(k)
			if ck == "" {
				continue
			}
			if _, dup := seen[ck]; !dup {
				seen[ck] = struct{}{}
				ds.Columns = append(ds.Columns, ck)
			}
			rec[ck] = obj[k]
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds, nil
}
