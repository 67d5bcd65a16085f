// Package config centralizes the configuration of the clean, load and
// describe binaries. Every tunable is a command-line flag whose default is
// seeded from the environment, so `-help` lists all knobs:
//
//  1. a value in the process environment seeds the flag default,
//  2. otherwise a value from the .env file (see -env-file) does,
//  3. otherwise the built-in default applies,
//  4. an explicit flag overrides all of the above.
//
// The binaries reach LoadFromArgs through cli.Start with os.Getenv; tests
// pass their own lookup and flag set to stay hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg, err := config.LoadFromArgs(fs, getenv, []string{"-batch_size=10"})
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultTable is the relational table the loader writes to.
const DefaultTable = "luxury_housing"

// DefaultEnvFile is read when -env-file / ENV_FILE are not set. A missing
// default file is not an error.
const DefaultEnvFile = ".env"

// Config holds all process configuration. It is a plain value and safe to
// copy after construction.
type Config struct {
	// IO paths.
	RawPath     string // raw export to clean or describe
	CleanPath   string // cleaned output, loader input
	RejectsPath string // optional CSV of rows dropped by the cleaning filters

	// DB describes the loader target. DSN wins over the discrete parts.
	DBDriver   string // mysql, postgres, sqlite or mssql
	DSN        string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBTable    string
	BatchSize  int

	// Metrics backend: "", "none", "prometheus" or "datadog".
	MetricsBackend string
	PushgatewayURL string
	DogStatsDAddr  string
	JobName        string

	// Logging.
	LogLevel  string
	LogFormat string

	// SampleRows is the number of rows previewed by clean and describe.
	SampleRows int

	// EnvFile is the .env file that was consulted, if any.
	EnvFile string
}

// LoadFromArgs defines flags on fs with defaults seeded from getenv and an
// optional .env file, then parses args. The .env path is taken from an
// -env-file argument, then ENV_FILE, then DefaultEnvFile; only an explicitly
// named file must exist.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	envFile, explicit := envFileFrom(args, getenv)
	dotenv, err := readDotenv(envFile, explicit)
	if err != nil {
		return nil, err
	}
	lookup := func(k string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return dotenv[k]
	}
	str := func(k, d string) string {
		if v := lookup(k); v != "" {
			return v
		}
		return d
	}
	num := func(k string, d int) int {
		if v := lookup(k); v != "" {
			if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return i
			}
		}
		return d
	}

	cfg := &Config{}

	fs.StringVar(&cfg.EnvFile, "env-file", envFile, "Path to a .env file consulted after the process environment (ENV_FILE)")

	fs.StringVar(&cfg.RawPath, "raw", str("RAW_DATA_PATH", ""), "Path to the raw CSV export (RAW_DATA_PATH)")
	fs.StringVar(&cfg.CleanPath, "clean", str("CLEAN_DATA_PATH", ""), "Path of the cleaned CSV (CLEAN_DATA_PATH)")
	fs.StringVar(&cfg.RejectsPath, "rejects", str("REJECTS_PATH", ""), "Optional CSV log of dropped rows (REJECTS_PATH)")

	fs.StringVar(&cfg.DBDriver, "db_driver", str("DB_DRIVER", "mysql"), "Database driver: mysql, postgres, sqlite or mssql (DB_DRIVER)")
	fs.StringVar(&cfg.DSN, "dsn", str("DB_DSN", ""), "Full DSN; overrides the discrete DB_* settings (DB_DSN)")
	fs.StringVar(&cfg.DBHost, "db_host", str("DB_HOST", "localhost"), "DB host (DB_HOST)")
	fs.StringVar(&cfg.DBPort, "db_port", str("DB_PORT", ""), "DB port; empty uses the driver default (DB_PORT)")
	fs.StringVar(&cfg.DBUser, "db_user", str("DB_USER", ""), "DB user (DB_USER)")
	fs.StringVar(&cfg.DBPassword, "db_password", str("DB_PASSWORD", ""), "DB password (DB_PASSWORD)")
	fs.StringVar(&cfg.DBName, "db_name", str("DB_NAME", ""), "DB name, or file path for sqlite (DB_NAME)")
	fs.StringVar(&cfg.DBTable, "db_table", str("DB_TABLE", DefaultTable), "Target table (DB_TABLE)")
	fs.IntVar(&cfg.BatchSize, "batch_size", num("BATCH_SIZE", 1000), "Rows per insert batch (BATCH_SIZE)")

	fs.StringVar(&cfg.MetricsBackend, "metrics", str("METRICS_BACKEND", "none"), "Metrics backend: none, prometheus or datadog (METRICS_BACKEND)")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway", str("PUSHGATEWAY_URL", ""), "Prometheus Pushgateway URL (PUSHGATEWAY_URL)")
	fs.StringVar(&cfg.DogStatsDAddr, "dogstatsd", str("DOGSTATSD_ADDR", ""), "DogStatsD address (DOGSTATSD_ADDR)")
	fs.StringVar(&cfg.JobName, "job", str("JOB_NAME", ""), "Job name used for metrics; defaults to the binary name (JOB_NAME)")

	fs.StringVar(&cfg.LogLevel, "log-level", str("LOG_LEVEL", "info"), "Log level: debug, info, warn, error (LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", str("LOG_FORMAT", "tint"), "Log format: tint, text or json (LOG_FORMAT)")

	fs.IntVar(&cfg.SampleRows, "sample", num("SAMPLE_ROWS", 10), "Rows to preview (SAMPLE_ROWS)")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.JobName == "" {
		cfg.JobName = fs.Name()
	}
	return cfg, nil
}

// envFileFrom finds the .env path without parsing the flag set, since the
// file has to be read before flag defaults are computed.
func envFileFrom(args []string, getenv func(string) string) (string, bool) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		name := strings.TrimLeft(a, "-")
		if len(name) == len(a) {
			continue
		}
		if v, ok := strings.CutPrefix(name, "env-file="); ok {
			return v, true
		}
		if name == "env-file" && i+1 < len(args) {
			return args[i+1], true
		}
	}
	if v := getenv("ENV_FILE"); v != "" {
		return v, true
	}
	return DefaultEnvFile, false
}

func readDotenv(path string, explicit bool) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	m, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: read env file %s: %w", ErrConfiguration, path, err)
	}
	return m, nil
}
