package extract

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
)

func TestJSONFileArrayOfObjects(t *testing.T) {
	path := writeFile(t, "a.json", `[
		{"Dept Code": "CS", "Dept Name": "Computer Science", "Established Year": 1965},
		{"Dept Code": "EE", "Dept Name": "Electrical"}
	]`)
	ds, err := NewJSONFile(path).Extract(context.Background())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(ds) != 1 || ds[0].Name != "data" {
		t.Fatalf("datasets = %+v", ds)
	}
	wantCols := []string{"dept_code", "dept_name", "established_year"}
	if !reflect.DeepEqual(ds[0].Columns, wantCols) {
		t.Fatalf("columns = %v, want %v", ds[0].Columns, wantCols)
	}
	if got := ds[0].Rows[0]["established_year"]; got != json.Number("1965") {
		t.Fatalf("established_year = %v (%T), want json.Number", got, got)
	}
}

func TestJSONFileObjectOfArrays(t *testing.T) {
	path := writeFile(t, "o.json", `{
		"students": [{"email": "ada@x.edu"}],
		"departments": [{"dept_code": "CS"}]
	}`)
	ds, err := NewJSONFile(path).Extract(context.Background())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(ds) != 2 {
		t.Fatalf("datasets = %+v", ds)
	}
	// Keys come out sorted for a stable run order.
	if ds[0].Name != "departments" || ds[1].Name != "students" {
		t.Fatalf("names = %q, %q", ds[0].Name, ds[1].Name)
	}
}

func TestJSONFileBadShapes(t *testing.T) {
	for name, content := range map[string]string{
		"scalar.json":       `42`,
		"array-of-arrays":   `[[1,2]]`,
		"object-non-array":  `{"students": {"email": "x"}}`,
		"syntax-error.json": `{`,
	} {
		path := writeFile(t, "b.json", content)
		if _, err := NewJSONFile(path).Extract(context.Background()); err == nil {
			t.Errorf("%s: want error", name)
		}
	}
}
