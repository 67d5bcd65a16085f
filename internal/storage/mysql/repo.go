// Package mysql implements storage.Repository on MySQL with
// github.com/go-sql-driver/mysql. Each batch becomes one transaction of
// multi-row INSERT statements, split so that no statement exceeds the
// server's placeholder limit.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
)

// maxPlaceholders is the prepared statement parameter limit of the MySQL
// protocol.
const maxPlaceholders = 65535

const defaultPort = "3306"

// Config holds the MySQL connection and target table.
type Config struct {
	// DSN in go-sql-driver form, e.g. "etl:secret@tcp(db:3306)/housing".
	// When empty it is assembled from the discrete fields.
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Table    string
}

// Repository is a MySQL-backed storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// execer is the part of *sql.Tx the insert path needs.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// NewRepository opens a pool for cfg, pings it and returns the repository
// with its close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn, err := FormatDSN(cfg)
	if err != nil {
		return nil, nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// FormatDSN returns cfg.DSN after validating it, or builds a TCP DSN from the
// discrete fields.
func FormatDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		if _, err := gomysql.ParseDSN(cfg.DSN); err != nil {
			return "", fmt.Errorf("mysql: dsn: %w", err)
		}
		return cfg.DSN, nil
	}
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == "" {
		port = defaultPort
	}
	c := gomysql.NewConfig()
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(host, port)
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.DBName = cfg.Name
	return c.FormatDSN(), nil
}

// CopyFrom inserts rows in a single transaction.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	n, err := insertRows(ctx, tx, r.cfg.Table, columns, rows)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return n, nil
}

func insertRows(ctx context.Context, ex execer, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: columns must not be empty")
	}
	per := chunkRows(len(columns))
	var inserted int64
	for lo := 0; lo < len(rows); lo += per {
		hi := min(lo+per, len(rows))
		chunk := rows[lo:hi]
		args := make([]any, 0, len(chunk)*len(columns))
		for i, row := range chunk {
			if len(row) != len(columns) {
				return inserted, fmt.Errorf("mysql: row %d has %d values, want %d", lo+i, len(row), len(columns))
			}
			args = append(args, row...)
		}
		res, err := ex.ExecContext(ctx, insertSQL(table, columns, len(chunk)), args...)
		if err != nil {
			return inserted, fmt.Errorf("mysql: insert rows %d-%d: %w", lo, hi-1, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("mysql: rows affected: %w", err)
		}
		inserted += n
	}
	return inserted, nil
}

// chunkRows is the number of rows of width cols that fit one statement.
func chunkRows(cols int) int {
	return max(1, maxPlaceholders/cols)
}

func insertSQL(table string, columns []string, rows int) string {
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", quoteFQN(table), strings.Join(quoteAll(columns), ", "))
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(group)
	}
	return b.String()
}

// quoteIdent quotes a MySQL identifier with backticks.
func quoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// quoteFQN quotes "db.table" as `db`.`table`.
func quoteFQN(name string) string {
	return strings.Join(quoteAll(strings.Split(name, ".")), ".")
}

func quoteAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = quoteIdent(id)
	}
	return out
}
