package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect selects the SQL flavour of the backing database.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "pgx"
)

// DB wraps sql.DB together with the dialect it was opened with.
type DB struct {
	Client  *sql.DB
	Dialect Dialect
}

// DialectFor picks the dialect for a connection URL. Postgres URLs use pgx,
// everything else is treated as a SQLite file path or URI.
func DialectFor(url string) Dialect {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return Postgres
	}
	return SQLite
}

// Open connects, migrates the schema and seeds the reference subjects.
func Open(ctx context.Context, url string) (*DB, error) {
	dialect := DialectFor(url)
	dsn := url
	if dialect == SQLite {
		var err error
		if dsn, err = sqliteDSN(url); err != nil {
			return nil, err
		}
	}

	client, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dialect == Postgres {
		client.SetMaxOpenConns(10)
		client.SetMaxIdleConns(5)
	} else {
		client.SetMaxOpenConns(4)
	}
	client.SetConnMaxLifetime(time.Hour)

	db := &DB{Client: client, Dialect: dialect}
	if err := client.PingContext(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := db.SeedSubjects(ctx, DefaultSubjects); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("seed subjects: %w", err)
	}
	return db, nil
}

// sqliteDSN creates the parent directory and appends the connection
// options the store relies on: WAL, a busy timeout, enforced foreign keys
// and immediate write transactions.
func sqliteDSN(path string) (string, error) {
	file := strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(file, '?'); i >= 0 {
		file = file[:i]
	}
	if dir := filepath.Dir(file); dir != "." && dir != "" && !strings.Contains(file, ":memory:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create db dir: %w", err)
		}
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate", nil
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return sql.ErrConnDone
	}
	return d.Client.PingContext(ctx)
}

// Rebind rewrites ? placeholders to $n for postgres. Queries are written
// without string literals containing '?'.
func (d *DB) Rebind(query string) string {
	if d.Dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
