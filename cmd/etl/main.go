package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"unietl/internal/config"
	"unietl/internal/etl"
	"unietl/internal/extract"
	"unietl/internal/logging"
	"unietl/internal/metrics"
	"unietl/internal/metrics/datadog"
	"unietl/internal/metrics/prompush"
	"unietl/internal/storage"

	// register all backends with the storage factory.
	_ "unietl/internal/storage/all"
)

// main is the entry point for the pipeline binary. It reads environment
// configuration, builds the extractor for the requested source, optionally
// initializes a metrics backend, and executes one run.
func main() {
	var (
		source            string
		path              string
		spreadsheetID     string
		credentials       string
		tablesFlg         string
		table             string
		initDB            bool
		metricsBackendFlg string
		pushGatewayURLFlg string
		datadogAddrFlg    string
	)

	flag.StringVar(&source, "source", "", "data source: spreadsheet, csv, json, excel")
	flag.StringVar(&path, "path", "", "input file path (csv, json, excel sources)")
	flag.StringVar(&spreadsheetID, "spreadsheet-id", "", "Google Sheets spreadsheet id (overrides env SPREADSHEET_ID)")
	flag.StringVar(&credentials, "credentials", "", "service account credentials file (overrides env GOOGLE_CREDENTIALS_FILE)")
	flag.StringVar(&tablesFlg, "tables", "", "comma-separated list of tables to process (default all)")
	flag.StringVar(&table, "table", "", "load every dataset into this table, bypassing inference")
	flag.BoolVar(&initDB, "init-db", false, "create the target schema before loading")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend: pushgateway, datadog, none (default env METRICS_BACKEND, else none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&datadogAddrFlg, "datadog-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}

	closeLog, err := logging.Setup(cfg.LogsDir)
	if err != nil {
		fatalf("%v", err)
	}
	defer closeLog()

	src, err := buildSource(source, path, spreadsheetID, credentials, cfg)
	if err != nil {
		fatalf("%v", err)
	}

	dsn, err := cfg.DSN()
	if err != nil {
		fatalf("%v", err)
	}

	backendName := resolveMetricsBackend(metricsBackendFlg)
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("unietl", gwURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v backend=%v", gwURL, backendName)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "datadog":
		addr := datadogAddrFlg
		if addr == "" {
			addr = os.Getenv("DD_AGENT_ADDR")
		}
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: addr, Namespace: "unietl."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: addr=%v backend=%v", addr, backendName)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "none":
		// metrics disabled; nop backend remains

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	var tables []string
	if tablesFlg != "" {
		tables = strings.Split(tablesFlg, ",")
	}

	p := &etl.Pipeline{
		Job:        "unietl",
		Source:     src,
		Storage:    storage.Config{Kind: cfg.StorageKind, DSN: dsn},
		Tables:     tables,
		Entity:     table,
		InitDB:     initDB,
		ReportsDir: cfg.ReportsDir,
	}

	if *verbose {
		log.Printf("pipeline: source=%s storage=%s tables=%q", source, cfg.StorageKind, tablesFlg)
	}

	start := time.Now()
	if err := p.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// resolveMetricsBackend picks the metrics backend: flag, then the
// METRICS_BACKEND environment variable, then no metrics at all.
func resolveMetricsBackend(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := os.Getenv("METRICS_BACKEND"); v != "" {
		return v
	}
	return "none"
}

// buildSource validates the source flag combination and returns the
// extractor, mirroring the checks the CLI help promises.
func buildSource(source, path, spreadsheetID, credentials string, cfg config.Config) (extract.Extractor, error) {
	switch source {
	case "csv":
		if path == "" {
			return nil, fmt.Errorf("--path is required for --source=csv")
		}
		return extract.NewCSVFile(path), nil
	case "json":
		if path == "" {
			return nil, fmt.Errorf("--path is required for --source=json")
		}
		return extract.NewJSONFile(path), nil
	case "excel":
		if path == "" {
			return nil, fmt.Errorf("--path is required for --source=excel")
		}
		return extract.NewExcelFile(path, ""), nil
	case "spreadsheet", "sheets", "google_sheets":
		id := spreadsheetID
		if id == "" {
			id = cfg.SpreadsheetID
		}
		if id == "" {
			return nil, fmt.Errorf("--spreadsheet-id (or env SPREADSHEET_ID) is required for --source=spreadsheet")
		}
		creds := credentials
		if creds == "" {
			creds = cfg.CredentialsFile
		}
		return extract.NewGoogleSheets(id, creds, ""), nil
	case "":
		return nil, fmt.Errorf("--source is required (spreadsheet, csv, json, excel)")
	default:
		return nil, fmt.Errorf("unknown source %q (want spreadsheet, csv, json, excel)", source)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
