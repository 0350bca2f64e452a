// Package storage contains the storage-agnostic contracts for persisting
// cleaned records: a Repository interface implemented per backend, a factory
// keyed by storage kind, and the Loader that drives natural-key upserts.
//
// Concrete backends live in subpackages (postgres, mysql, mssql, sqlite) and
// register themselves with the factory from their init functions. Importing
// storage/all (usually as a blank import in the wiring layer) makes every
// built-in backend available at runtime.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"unietl/pkg/records"
)

// Config selects and configures a storage backend.
type Config struct {
	// Kind selects the registered backend: "postgres", "mysql", "mssql", "sqlite".
	Kind string

	// DSN is the backend-specific connection string.
	DSN string
}

// TableSpec describes one target table: its insertable columns in statement
// order, the natural-key subset used for conflict detection, and the
// auto-assigned surrogate id column returned on upsert.
type TableSpec struct {
	Table      string
	Columns    []string
	KeyColumns []string
	IDColumn   string
}

// Repository is the minimal backend contract. UpsertRow must execute the
// insert-or-update inside its own transaction so that a failing record never
// poisons its neighbours.
type Repository interface {
	// UpsertRow inserts rec or, on natural-key conflict, overwrites all
	// non-key columns. It returns the surrogate id of the affected row.
	UpsertRow(ctx context.Context, spec TableSpec, rec records.Record) (int64, error)

	// Exec runs a single statement (DDL bootstrap, maintenance).
	Exec(ctx context.Context, sql string) error

	// Ping verifies the connection is usable.
	Ping(ctx context.Context) error

	Close()
}

// Factory builds a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
	ddls      = map[string]func(ctx context.Context, repo Repository) error{}
)

// Register installs a backend factory under kind. Later registrations with
// the same kind win; backends call this from init.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// RegisterDDL installs a schema bootstrapper for kind.
func RegisterDDL(kind string, fn func(ctx context.Context, repo Repository) error) {
	regMu.Lock()
	defer regMu.Unlock()
	ddls[kind] = fn
}

// New opens a Repository for cfg.Kind, or reports the known kinds when the
// requested one was never registered.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, registeredKinds())
	}
	return f(ctx, cfg)
}

// EnsureSchema creates the expected tables for kind, when the backend ships
// DDL. Backends without a registered bootstrapper return an error so the
// caller can surface "create your schema by hand".
func EnsureSchema(ctx context.Context, kind string, repo Repository) error {
	regMu.RLock()
	fn, ok := ddls[kind]
	regMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: no schema bootstrap for kind %q", kind)
	}
	return fn(ctx, repo)
}

func registeredKinds() []string {
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
