// Package storage holds the backend-agnostic contract of the loader: a
// Repository that bulk-inserts rows aligned to a column list, and a small
// factory that concrete backends register themselves with from init.
//
// Import housing-etl/internal/storage/all to enable every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository bulk-inserts rows into one destination table. The table must
// already exist; repositories never issue DDL.
type Repository interface {
	// CopyFrom inserts rows aligned to columns and returns the number of rows
	// the backend reported as inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	Close()
}

// Config selects and parameterizes a backend. When DSN is empty the backend
// assembles one from the discrete connection fields.
type Config struct {
	Kind string

	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string

	// Table is the destination table, optionally schema-qualified.
	Table string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Registering the same kind
// again replaces the previous factory.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens the repository registered under cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered backend kinds in sorted order.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
