package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	closeFn, err := Setup(dir)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Printf("hello from the run")
	closeFn()

	files, err := filepath.Glob(filepath.Join(dir, "etl_*.log"))
	if err != nil || len(files) != 1 {
		t.Fatalf("log files = %v (%v)", files, err)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "hello from the run") {
		t.Fatalf("log file missing message: %q", data)
	}
}

func TestSetupEmptyDirDisablesFile(t *testing.T) {
	closeFn, err := Setup("")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	closeFn()
}
