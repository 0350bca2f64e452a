// Package config loads pipeline settings from the environment.
//
// A .env file in the working directory is applied first (godotenv), then real
// environment variables win. The zero-dependency rule for callers holds: they
// get a plain struct and per-backend DSN builders, nothing else.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every setting the pipeline reads from the environment.
type Config struct {
	// Database connection settings.
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// StorageKind selects the storage backend: postgres, mysql, mssql, sqlite.
	StorageKind string

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string

	// Google Sheets source settings.
	CredentialsFile string
	SpreadsheetID   string

	BatchSize         int
	LogLevel          string
	EnableIncremental bool

	LogsDir    string
	ReportsDir string
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() Config {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	return Config{
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenvInt("DB_PORT", 5432),
		DBName:     os.Getenv("DB_NAME"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		StorageKind: getenv("STORAGE_KIND", "postgres"),
		SQLitePath:  getenv("SQLITE_PATH", "unietl.db"),

		CredentialsFile: getenv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),

		BatchSize:         getenvInt("BATCH_SIZE", 100),
		LogLevel:          getenv("LOG_LEVEL", "INFO"),
		EnableIncremental: getenvBool("ENABLE_INCREMENTAL", false),

		LogsDir:    getenv("LOGS_DIR", "logs"),
		ReportsDir: getenv("REPORTS_DIR", "reports"),
	}
}

// Validate reports the first missing required setting. The sqlite backend
// needs no server credentials, so only the path is checked for it.
func (c Config) Validate() error {
	if c.StorageKind == "sqlite" {
		if c.SQLitePath == "" {
			return fmt.Errorf("config: SQLITE_PATH is required for the sqlite backend")
		}
		return nil
	}
	for _, f := range []struct{ name, val string }{
		{"DB_NAME", c.DBName},
		{"DB_USER", c.DBUser},
		{"DB_PASSWORD", c.DBPassword},
	} {
		if f.val == "" {
			return fmt.Errorf("config: %s is required", f.name)
		}
	}
	return nil
}

// DSN builds the connection string for the configured storage kind.
func (c Config) DSN() (string, error) {
	switch c.StorageKind {
	case "postgres":
		return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
			url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword),
			c.DBHost, c.DBPort, c.DBName, c.DBSSLMode), nil
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName), nil
	case "mssql":
		return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword),
			c.DBHost, c.DBPort, c.DBName), nil
	case "sqlite":
		return c.SQLitePath, nil
	default:
		return "", fmt.Errorf("config: unknown storage kind %q", c.StorageKind)
	}
}

// Debug reports whether debug logging is enabled.
func (c Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "DEBUG")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
