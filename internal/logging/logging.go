// Package logging sets up per-run log output: everything written through the
// stdlib log package is teed to stderr and a timestamped file under the logs
// directory, one file per pipeline run.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Setup creates dir if needed, opens logs/etl_<timestamp>.log and redirects
// the default logger to both stderr and the file. The returned closer flushes
// and closes the file; call it when the run ends. An empty dir disables the
// file and logs to stderr only.
func Setup(dir string) (func(), error) {
	log.SetFlags(log.LstdFlags)
	if dir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, "etl_"+time.Now().Format("20060102_150405")+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", path, err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}
