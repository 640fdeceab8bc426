// Package storage holds the backend-agnostic contracts for persisting the
// reconciliation report: a Repository interface, a factory keyed by storage
// kind, a small DDL model, and a batched loader.
//
// Concrete backends live in subpackages and register themselves in init;
// import internal/storage/all to enable every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config selects and configures a backend.
type Config struct {
	Kind    string   // "postgres", "sqlite", "mssql"
	DSN     string   // backend-specific connection string
	Table   string   // target table, optionally schema-qualified
	Columns []string // ordered destination columns
}

// Repository is what the report sink needs from a backend.
type Repository interface {
	// CopyFrom bulk-inserts rows aligned with columns and returns the number
	// of rows written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Registering a kind twice
// replaces the earlier factory.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens the backend registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	repo, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", cfg.Kind, err)
	}
	return repo, nil
}
