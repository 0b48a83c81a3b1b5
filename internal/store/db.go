// Package store implements the persistence adapter: one Adapter with
// all entity logic, running against an embedded SQLite database or a
// PostgreSQL server behind the same interface.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Config.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and tunes the backing engine.
type Config struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string

	// Path is the database file for the sqlite driver.
	Path string

	// URL is the connection string for the postgres driver.
	URL string

	MaxOpenConns int
	MaxIdleConns int

	// SkipMigrations leaves the schema untouched at open, for callers
	// that bootstrap the schema in a separate step (e.g. test harnesses
	// or a deploy-time migrate command). Query capability is unaffected.
	SkipMigrations bool

	// Logger receives connection and migration events. Defaults to a
	// no-op logger.
	Logger *zap.Logger
}

// DB owns the connection pool for one backend. It is created once at
// startup and shared by any number of Adapters; all queries are scoped
// by agent id, so sharing is safe.
type DB struct {
	sql  *sql.DB
	d    dialect
	log  *zap.Logger
	path string
}

// Open establishes the pool and, unless skipped, applies migrations.
// An unreachable engine fails here rather than on first query; retry
// policy belongs to the caller.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var d dialect
	var dsn string
	switch cfg.Driver {
	case DriverSQLite, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite driver requires a database path")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		d = sqliteDialect{}
		dsn = cfg.Path + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)"
	case DriverPostgres:
		if cfg.URL == "" {
			return nil, fmt.Errorf("postgres driver requires a connection URL")
		}
		d = postgresDialect{}
		dsn = cfg.URL
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	pool, err := sql.Open(d.driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect %s: %w", d.name(), err)
	}

	db := &DB{sql: pool, d: d, log: logger, path: cfg.Path}
	logger.Info("database opened", zap.String("driver", d.name()))

	if !cfg.SkipMigrations {
		if err := db.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return db, nil
}

// Client checks out a dedicated connection from the pool. The caller
// must Close it to return it to the pool.
func (db *DB) Client(ctx context.Context) (*sql.Conn, error) {
	conn, err := db.sql.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

// Close terminates all connections.
func (db *DB) Close() error {
	db.log.Info("database closed", zap.String("driver", db.d.name()))
	return db.sql.Close()
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.sql.ExecContext(ctx, db.d.bind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.sql.QueryContext(ctx, db.d.bind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.sql.QueryRowContext(ctx, db.d.bind(query), args...)
}
