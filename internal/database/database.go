// Package database manages the relational store connection and schema.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavor and driver used by the store.
type Dialect string

const (
	// DialectSQLite keeps the whole store in a single file. Default.
	DialectSQLite Dialect = "sqlite"
	// DialectPostgres targets a PostgreSQL server.
	DialectPostgres Dialect = "postgres"
)

const defaultQueryTimeout = 5 * time.Second

// DB wraps a sql.DB pool with dialect awareness and per-operation deadlines.
type DB struct {
	*sql.DB
	dialect      Dialect
	queryTimeout time.Duration
	log          *slog.Logger
}

// Open connects to the store described by dialect and dsn and verifies the
// connection with a ping. queryTimeout bounds every subsequent operation;
// zero selects the default.
func Open(ctx context.Context, dialect Dialect, dsn string, queryTimeout time.Duration, log *slog.Logger) (*DB, error) {
	if log == nil {
		log = slog.Default()
	}
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}

	driver, err := driverName(dialect)
	if err != nil {
		return nil, err
	}

	pool, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// A single writer avoids SQLITE_BUSY under concurrent handlers.
		pool.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping %s store: %w", dialect, err)
	}

	return &DB{
		DB:           pool,
		dialect:      dialect,
		queryTimeout: queryTimeout,
		log:          log,
	}, nil
}

// Dialect returns the configured SQL dialect.
func (d *DB) Dialect() Dialect {
	return d.dialect
}

// OperationContext derives a context bounded by the configured query timeout.
func (d *DB) OperationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithTimeout(ctx, d.queryTimeout)
}

// Rebind rewrites ? placeholders into the dialect's native form.
func (d *DB) Rebind(query string) string {
	if d.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

func driverName(dialect Dialect) (string, error) {
	switch dialect {
	case DialectSQLite:
		return "sqlite", nil
	case DialectPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported storage dialect %q", dialect)
	}
}
