package extract

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"unietl/pkg/records"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVFile extracts one dataset from a comma-separated file. The first row is
// the header; a leading UTF-8 BOM is stripped before parsing.
type CSVFile struct {
	Path string
}

// NewCSVFile returns an extractor for the CSV file at path.
func NewCSVFile(path string) *CSVFile { return &CSVFile{Path: path} }

// Extract implements Extractor.
func (c *CSVFile) Extract(ctx context.Context) ([]records.Dataset, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("extract csv: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if peeked, err := br.Peek(len(utf8BOM)); err == nil && string(peeked) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1 // ragged rows are padded or truncated against the header

	header, err := r.Read()
	if err == io.EOF {
		return []records.Dataset{{Name: datasetName(c.Path)}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("extract csv %s: header: %w", c.Path, err)
	}
	columns := CanonicalHeaders(header)

	var rows []records.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("extract csv %s: row %d: %w", c.Path, len(rows)+2, err)
		}
		rows = append(rows, zipRow(columns, cells))
	}
	return []records.Dataset{{Name: datasetName(c.Path), Columns: columns, Rows: rows}}, nil
}
