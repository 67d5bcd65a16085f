// Package cli holds the wiring shared by the clean, load and describe
// binaries: configuration, logging, metrics backend selection and exit codes.
//
// Each binary's main is a thin shell around run(Env) int. Env carries the
// arguments, environment lookup and output streams, so tests drive a binary
// in-process without touching os.Args or the real environment.
//
// Exit codes:
//
//	0  success, or -help
//	1  runtime failure (bad input file, database error, invalid settings)
//	2  command-line usage error
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"housing-etl/internal/config"
	"housing-etl/internal/logging"
	"housing-etl/internal/metrics"
	"housing-etl/internal/metrics/datadog"
	"housing-etl/internal/metrics/prompush"
	"housing-etl/internal/storage"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Env is the process environment of one invocation.
type Env struct {
	Args   []string
	Getenv func(string) string
	Stdout io.Writer
	Stderr io.Writer
}

// OS returns the Env of the running process.
func OS() Env {
	return Env{Args: os.Args[1:], Getenv: os.Getenv, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Session is a configured invocation.
type Session struct {
	Config *config.Config
	Logger *slog.Logger
	RunID  string
}

// errUsage marks flag parsing failures; the flag package has already printed
// the message.
var errUsage = errors.New("usage")

// Start parses flags for the binary name, validates the settings selected by
// need, installs the logger and the metrics backend. Warnings are logged;
// errors are returned.
func Start(name string, env Env, need config.Need) (*Session, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	cfg, err := config.LoadFromArgs(fs, env.Getenv, env.Args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		if errors.Is(err, config.ErrConfiguration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}

	issues := config.Validate(cfg, need)
	if err := config.Err(issues); err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{Writer: env.Stderr, Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}
	for _, iss := range config.Warnings(issues) {
		log.Warn(name+": configuration", "key", iss.Path, "issue", iss.Message)
	}

	s := &Session{Config: cfg, Logger: log, RunID: uuid.NewString()}
	if err := s.installMetrics(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) installMetrics() error {
	cfg := s.Config
	switch strings.ToLower(cfg.MetricsBackend) {
	case "", "none":
	case "prometheus":
		b, err := prompush.NewBackend(cfg.JobName, cfg.PushgatewayURL, s.RunID)
		if err != nil {
			return fmt.Errorf("%w: %w", config.ErrConfiguration, err)
		}
		metrics.SetBackend(b)
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.DogStatsDAddr,
			GlobalTags: []string{"job:" + cfg.JobName, "run_id:" + s.RunID},
		})
		if err != nil {
			return fmt.Errorf("%w: %w", config.ErrConfiguration, err)
		}
		metrics.SetBackend(b)
	}
	return nil
}

// Close flushes the metrics backend. A flush failure is logged only.
func (s *Session) Close() {
	if err := metrics.Flush(); err != nil {
		s.Logger.Warn("metrics: flush failed", logging.Err(err))
	}
}

// Storage returns the loader's storage configuration.
func (s *Session) Storage() storage.Config {
	cfg := s.Config
	return storage.Config{
		Kind:     strings.ToLower(cfg.DBDriver),
		DSN:      cfg.DSN,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		Table:    cfg.DBTable,
	}
}

// Context returns a context canceled on SIGINT or SIGTERM.
func Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Code reports err on w and maps it to an exit code.
func Code(w io.Writer, name string, err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, flag.ErrHelp):
		return ExitOK
	case errors.Is(err, errUsage):
		return ExitUsage
	}
	fmt.Fprintf(w, "%s: %v\n", name, err)
	return ExitError
}
