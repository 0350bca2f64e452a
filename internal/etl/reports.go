package etl

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"unietl/internal/storage"
	"unietl/internal/transform"
)

// reportStamp names both report files of one run.
const reportStamp = "20060102_150405"

// LoadReport summarizes the load phase: per-table and cumulative counters.
type LoadReport struct {
	Timestamp string                       `json:"timestamp"`
	Tables    map[string]storage.LoadStats `json:"tables"`
	Totals    storage.LoadStats            `json:"totals"`
}

// writeReports writes the validation and load reports for the run. Both
// files share one timestamp. An empty ReportsDir disables files; summaries
// are still logged.
func (p *Pipeline) writeReports(stats transform.Stats, rowErrors []transform.RowError,
	perTable map[string]storage.LoadStats, totals storage.LoadStats) error {

	validation := transform.NewReport(stats, rowErrors)
	load := LoadReport{
		Timestamp: validation.Timestamp,
		Tables:    perTable,
		Totals:    totals,
	}

	if p.ReportsDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.ReportsDir, 0o755); err != nil {
		return fmt.Errorf("reports: create %s: %w", p.ReportsDir, err)
	}

	ts := time.Now().Format(reportStamp)
	vPath := filepath.Join(p.ReportsDir, "validation_report_"+ts+".json")
	if err := writeJSON(vPath, validation); err != nil {
		return err
	}
	lPath := filepath.Join(p.ReportsDir, "load_report_"+ts+".json")
	if err := writeJSON(lPath, load); err != nil {
		return err
	}
	log.Printf("reports: %s %s", vPath, lPath)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("reports: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("reports: write %s: %w", path, err)
	}
	return nil
}
