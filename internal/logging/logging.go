// Package logging builds the slog.Logger used by the binaries.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options configures New.
type Options struct {
	// Writer receives log lines. Defaults to os.Stderr.
	Writer io.Writer
	// Level is a slog level name: debug, info, warn or error.
	Level string
	// Format is "tint" (colored console), "text" or "json".
	Format string
	// AddSource adds file:line to each record.
	AddSource bool
}

// New returns a logger for opt. Colors are only emitted by the tint format
// when the writer is a terminal.
func New(opt Options) (*slog.Logger, error) {
	w := opt.Writer
	if w == nil {
		w = os.Stderr
	}
	var lvl slog.Level
	if opt.Level != "" {
		if err := lvl.UnmarshalText([]byte(opt.Level)); err != nil {
			return nil, fmt.Errorf("logging: level %q: %w", opt.Level, err)
		}
	}

	var h slog.Handler
	switch strings.ToLower(opt.Format) {
	case "", "tint":
		h = tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			AddSource:  opt.AddSource,
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(w),
		})
	case "text":
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opt.AddSource})
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opt.AddSource})
	default:
		return nil, fmt.Errorf("logging: unsupported format %q", opt.Format)
	}
	return slog.New(h), nil
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(opt Options) (*slog.Logger, error) {
	l, err := New(opt)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l)
	return l, nil
}

// Err is the conventional attribute for an error value.
func Err(err error) slog.Attr {
	return tint.Err(err)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
