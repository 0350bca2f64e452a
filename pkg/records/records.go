// Package records defines the untyped row representation shared by the
// extract, transform, and load stages.
package records

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is a single row keyed by canonical column name. Values are raw
// scalars as produced by the source adapter: string for CSV/spreadsheet
// cells, json.Number for JSON numerics, nil for absent cells.
type Record map[string]any

// Dataset is one named collection of rows (a sheet, a CSV file, one key of a
// JSON object) together with its header-derived column set.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Record
}

// String converts the value under key to its string form without incurring
// fmt.Sprint on the common scalar types. Absent and nil values yield "".
func (r Record) String(key string) string {
	return AsString(r[key])
}

// Has reports whether key is present with a non-nil, non-empty value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}

// AsString converts common scalar types to a string.
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
