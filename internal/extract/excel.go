package extract

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"unietl/pkg/records"
)

// ExcelFile extracts one dataset per sheet of an .xlsx workbook, or only the
// named sheet when Sheet is set. The first row of each sheet is the header;
// sheets with no data rows are skipped.
type ExcelFile struct {
	Path  string
	Sheet string
}

// NewExcelFile returns an extractor for the workbook at path. An empty sheet
// name means every sheet.
func NewExcelFile(path, sheet string) *ExcelFile { return &ExcelFile{Path: path, Sheet: sheet} }

// Extract implements Extractor.
func (e *ExcelFile) Extract(ctx context.Context) ([]records.Dataset, error) {
	wb, err := excelize.OpenFile(e.Path)
	if err != nil {
		return nil, fmt.Errorf("extract excel: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if e.Sheet != "" {
		sheets = []string{e.Sheet}
	}

	var out []records.Dataset
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		grid, err := wb.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("extract excel %s: sheet %q: %w", e.Path, sheet, err)
		}
		if len(grid) == 0 {
			continue
		}
		columns := CanonicalHeaders(grid[0])
		ds := records.Dataset{Name: sheet, Columns: columns}
		for _, cells := range grid[1:] {
			ds.Rows = append(ds.Rows, zipRow(columns, cells))
		}
		out = append(out, ds)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("extract excel %s: no data found", e.Path)
	}
	return out, nil
}
