package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"unietl/internal/etl"
	"unietl/internal/extract"
)

// probeResult describes one dataset found in the source: the entity the
// pipeline would load it into and the canonicalized columns it carries.
type probeResult struct {
	Dataset string   `json:"dataset"`
	Entity  string   `json:"entity"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// main is the entrypoint for the probing CLI. It reads a local CSV, JSON, or
// Excel file, canonicalizes the headers, runs table inference on each
// dataset, and prints the result as JSON. Useful for checking what cmd/etl
// would do with a file before pointing it at a database.
func main() {
	var (
		flagPath   = flag.String("path", "", "path of the source file (CSV, JSON, or Excel)")
		flagTable  = flag.String("table", "", "explicit entity override, bypassing inference")
		flagPretty = flag.Bool("pretty", true, "pretty-print JSON output")
	)
	flag.Parse()

	if *flagPath == "" {
		fmt.Fprintln(os.Stderr, "missing -path")
		flag.Usage()
		os.Exit(2)
	}

	src, err := extract.ForFile(*flagPath)
	if err != nil {
		fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	datasets, err := src.Extract(ctx)
	if err != nil {
		fatalf("probe: %v", err)
	}

	out := make([]probeResult, 0, len(datasets))
	for _, ds := range datasets {
		out = append(out, probeResult{
			Dataset: ds.Name,
			Entity:  etl.InferTable(ds.Name, ds.Columns, *flagTable),
			Columns: ds.Columns,
			Rows:    len(ds.Rows),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	if *flagPretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		fatalf("encode: %v", err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
