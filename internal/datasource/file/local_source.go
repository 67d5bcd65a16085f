// Package file implements the local filesystem source and sink used by the
// cleaning and loading binaries.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrSourceUnavailable reports that an input file cannot be located or read.
// It is fatal for a run.
var ErrSourceUnavailable = errors.New("source unavailable")

// Local is a filesystem data source bound to one path.
type Local struct{ path string }

// NewLocal returns a new Local data source for path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the configured path.
func (l *Local) Path() string { return l.path }

// Open opens the configured path for reading.
//
// A canceled context is returned as-is without touching the filesystem. Any
// filesystem failure, and a path that names a directory, is wrapped in
// ErrSourceUnavailable while keeping the underlying error reachable through
// errors.Is/As (e.g. os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if l.path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrSourceUnavailable)
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrSourceUnavailable, l.path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: stat %s: %w", ErrSourceUnavailable, l.path, err)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceUnavailable, l.path)
	}
	return f, nil
}
