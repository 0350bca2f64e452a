package extract

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"unietl/pkg/records"
)

// GoogleSheets extracts one dataset per sheet of a Google Sheets spreadsheet
// using a service account credentials file, or only the named sheet when
// Sheet is set.
type GoogleSheets struct {
	SpreadsheetID   string
	CredentialsFile string
	Sheet           string

	// newService is a seam for tests.
	newService func(ctx context.Context) (*sheets.Service, error)
}

// NewGoogleSheets returns an extractor for spreadsheetID. An empty sheet name
// means every sheet in the spreadsheet.
func NewGoogleSheets(spreadsheetID, credentialsFile, sheet string) *GoogleSheets {
	g := &GoogleSheets{SpreadsheetID: spreadsheetID, CredentialsFile: credentialsFile, Sheet: sheet}
	g.newService = func(ctx context.Context) (*sheets.Service, error) {
		return sheets.NewService(ctx,
			option.WithCredentialsFile(g.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsReadonlyScope),
		)
	}
	return g
}

// Extract implements Extractor.
func (g *GoogleSheets) Extract(ctx context.Context) ([]records.Dataset, error) {
	svc, err := g.newService(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract sheets: service: %w", err)
	}

	titles := []string{g.Sheet}
	if g.Sheet == "" {
		meta, err := svc.Spreadsheets.Get(g.SpreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("extract sheets %s: metadata: %w", g.SpreadsheetID, err)
		}
		titles = titles[:0]
		for _, s := range meta.Sheets {
			if s.Properties != nil {
				titles = append(titles, s.Properties.Title)
			}
		}
	}

	var out []records.Dataset
	for _, title := range titles {
		resp, err := svc.Spreadsheets.Values.Get(g.SpreadsheetID, title).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("extract sheets %s: range %q: %w", g.SpreadsheetID, title, err)
		}
		if len(resp.Values) == 0 {
			continue
		}
		columns := CanonicalHeaders(cellsToStrings(resp.Values[0]))
		ds := records.Dataset{Name: title, Columns: columns}
		for _, row := range resp.Values[1:] {
			ds.Rows = append(ds.Rows, zipRow(columns, cellsToStrings(row)))
		}
		out = append(out, ds)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("extract sheets %s: no data found", g.SpreadsheetID)
	}
	return out, nil
}

// cellsToStrings renders the values API's loosely typed cells as strings.
func cellsToStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = records.AsString(v)
	}
	return out
}
