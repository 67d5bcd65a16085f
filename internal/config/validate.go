package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// ErrConfiguration reports a missing or invalid setting. It is fatal and
// raised before any processing starts.
var ErrConfiguration = errors.New("configuration error")

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path names the setting by its
// environment key, e.g. "RAW_DATA_PATH".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Need selects which groups of settings a binary depends on.
type Need uint8

const (
	NeedRaw Need = 1 << iota
	NeedClean
	NeedDB
)

// Validate statically checks cfg for the settings selected by need. The
// logging and metrics settings are always checked.
func Validate(cfg *Config, need Need) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, msg string) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: msg})
	}

	raw := strings.TrimSpace(cfg.RawPath)
	clean := strings.TrimSpace(cfg.CleanPath)

	if need&NeedRaw != 0 && raw == "" {
		add(SeverityError, "RAW_DATA_PATH", "raw data path is not set")
	}
	if need&NeedClean != 0 && clean == "" {
		add(SeverityError, "CLEAN_DATA_PATH", "clean data path is not set")
	}
	if need&(NeedRaw|NeedClean) == NeedRaw|NeedClean && raw != "" && clean != "" &&
		filepath.Clean(raw) == filepath.Clean(clean) {
		add(SeverityError, "CLEAN_DATA_PATH", "clean data path must differ from the raw data path")
	}
	if rej := strings.TrimSpace(cfg.RejectsPath); rej != "" && clean != "" && filepath.Clean(rej) == filepath.Clean(clean) {
		add(SeverityError, "REJECTS_PATH", "rejects path must differ from the clean data path")
	}

	if need&NeedDB != 0 {
		issues = append(issues, validateDB(cfg)...)
	}
	issues = append(issues, validateMetrics(cfg)...)
	issues = append(issues, validateLogging(cfg)...)

	if cfg.SampleRows < 0 {
		add(SeverityError, "SAMPLE_ROWS", "must not be negative")
	}
	return issues
}

func validateDB(cfg *Config) []Issue {
	var issues []Issue
	switch strings.ToLower(cfg.DBDriver) {
	case "mysql", "postgres", "sqlite", "mssql":
	case "":
		issues = append(issues, Issue{SeverityError, "DB_DRIVER", "database driver is not set"})
	default:
		issues = append(issues, Issue{SeverityError, "DB_DRIVER", fmt.Sprintf("unsupported driver %q; want mysql, postgres, sqlite or mssql", cfg.DBDriver)})
	}
	if cfg.DSN == "" && cfg.DBName == "" {
		issues = append(issues, Issue{SeverityError, "DB_NAME", "database name is required when DB_DSN is not set"})
	}
	if cfg.DSN == "" && cfg.DBUser == "" && !strings.EqualFold(cfg.DBDriver, "sqlite") {
		issues = append(issues, Issue{SeverityWarning, "DB_USER", "no database user configured"})
	}
	if strings.TrimSpace(cfg.DBTable) == "" {
		issues = append(issues, Issue{SeverityError, "DB_TABLE", "target table is not set"})
	}
	if cfg.BatchSize <= 0 {
		issues = append(issues, Issue{SeverityError, "BATCH_SIZE", "must be positive"})
	}
	return issues
}

func validateMetrics(cfg *Config) []Issue {
	switch strings.ToLower(cfg.MetricsBackend) {
	case "", "none":
		return nil
	case "prometheus":
		if cfg.PushgatewayURL == "" {
			return []Issue{{SeverityError, "PUSHGATEWAY_URL", "required for the prometheus metrics backend"}}
		}
	case "datadog":
		if cfg.DogStatsDAddr == "" {
			return []Issue{{SeverityError, "DOGSTATSD_ADDR", "required for the datadog metrics backend"}}
		}
	default:
		return []Issue{{SeverityError, "METRICS_BACKEND", fmt.Sprintf("unsupported backend %q; want none, prometheus or datadog", cfg.MetricsBackend)}}
	}
	return nil
}

func validateLogging(cfg *Config) []Issue {
	var issues []Issue
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		issues = append(issues, Issue{SeverityError, "LOG_LEVEL", fmt.Sprintf("invalid level %q", cfg.LogLevel)})
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "tint", "text", "json":
	default:
		issues = append(issues, Issue{SeverityError, "LOG_FORMAT", fmt.Sprintf("unsupported format %q; want tint, text or json", cfg.LogFormat)})
	}
	return issues
}

// Err joins the error-severity issues into one error wrapping
// ErrConfiguration, or returns nil when there are none.
func Err(issues []Issue) error {
	var errs []error
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(errs...))
}

// Warnings returns the warning-severity issues.
func Warnings(issues []Issue) []Issue {
	var out []Issue
	for _, iss := range issues {
		if iss.Severity == SeverityWarning {
			out = append(out, iss)
		}
	}
	return out
}
