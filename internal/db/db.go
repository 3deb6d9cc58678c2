// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/toeirei/intelhub/internal/model"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	// SQL drivers for the non-default backends.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	//go:embed migrations
	embeddedMigrations embed.FS
	// sqlOpenFunc allows tests to override database opening behavior.
	sqlOpenFunc = sql.Open
)

// Supported database types.
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
)

// Options selects the backend and its data source.
type Options struct {
	Type string
	DSN  string
}

// DB is an open, migrated database. It is safe for concurrent use; every
// query borrows a pooled connection and returns it when done.
type DB struct {
	bun    *bun.DB
	dbType string
}

// driverName maps a database type to the registered database/sql driver.
// The pgx stdlib registers itself as "pgx".
func driverName(dbType string) string {
	if dbType == TypePostgres {
		return "pgx"
	}
	return dbType
}

// Open connects to the configured database, tunes the pool and applies any
// pending migrations. Failures wrap model.ErrStoreUnavailable.
func Open(ctx context.Context, opts Options) (*DB, error) {
	switch opts.Type {
	case TypeSQLite, TypePostgres, TypeMySQL:
	default:
		return nil, fmt.Errorf("unsupported database type '%s': %w", opts.Type, model.ErrStoreUnavailable)
	}
	if opts.DSN == "" {
		return nil, fmt.Errorf("empty dsn for %s: %w", opts.Type, model.ErrStoreUnavailable)
	}

	if opts.Type == TypeSQLite {
		if err := ensureSQLiteDir(opts.DSN); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
		}
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName(opts.Type), opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w: %v", model.ErrStoreUnavailable, err)
	}
	configurePool(sqlDB, opts)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w: %v", model.ErrStoreUnavailable, err)
	}
	dbLogf("db: opened %s driver in %s", driverName(opts.Type), time.Since(start))

	migStart := time.Now()
	if err := RunMigrations(sqlDB, opts.Type); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w: %v", model.ErrStoreUnavailable, err)
	}
	dbLogf("db: migrations for %s completed in %s", opts.Type, time.Since(migStart))

	return &DB{bun: createBunDB(sqlDB, opts.Type), dbType: opts.Type}, nil
}

// configurePool applies connection pool limits. Values can be overridden
// via environment variables for CI or production tuning.
func configurePool(sqlDB *sql.DB, opts Options) {
	const (
		defaultMaxOpenConns    = 25
		defaultMaxIdleConns    = 25
		defaultConnMaxLifetime = 5 * time.Minute
		defaultConnMaxIdle     = 60 * time.Second
	)

	maxOpen := envInt("INTELHUB_DB_MAX_OPEN_CONNS", defaultMaxOpenConns)
	maxIdle := envInt("INTELHUB_DB_MAX_IDLE_CONNS", defaultMaxIdleConns)

	// Each connection to a private in-memory SQLite database sees its own
	// empty database, so pin those to a single connection.
	if opts.Type == TypeSQLite && isPrivateMemoryDSN(opts.DSN) {
		maxOpen = 1
		maxIdle = 1
	}

	connMax := defaultConnMaxLifetime
	if n := envInt("INTELHUB_DB_CONN_MAX_LIFETIME_SECONDS", -1); n >= 0 {
		connMax = time.Duration(n) * time.Second
	}
	connIdle := defaultConnMaxIdle
	if n := envInt("INTELHUB_DB_CONN_MAX_IDLE_SECONDS", -1); n >= 0 {
		connIdle = time.Duration(n) * time.Second
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(connMax)
	sqlDB.SetConnMaxIdleTime(connIdle)
	dbLogf("db: pool max open=%d idle=%d maxLifetime=%s maxIdleTime=%s", maxOpen, maxIdle, connMax, connIdle)
}

// ensureSQLiteDir creates the parent directory of a plain SQLite file path.
// URI and in-memory DSNs are left alone.
func ensureSQLiteDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory %s: %w", dir, err)
	}
	return nil
}

func isPrivateMemoryDSN(dsn string) bool {
	if dsn == ":memory:" || dsn == "file::memory:" {
		return true
	}
	return strings.Contains(dsn, "mode=memory") && !strings.Contains(dsn, "cache=shared")
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and dbType.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case TypeSQLite:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	case TypePostgres:
		return bun.NewDB(sqlDB, pgdialect.New())
	case TypeMySQL:
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		// Fallback to SQLite dialect; Open validates the type earlier.
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// Type returns the database type this DB was opened with.
func (d *DB) Type() string { return d.dbType }

// Bun exposes the underlying bun handle.
func (d *DB) Bun() *bun.DB { return d.bun }

// Close releases the connection pool.
func (d *DB) Close() error {
	if d == nil || d.bun == nil {
		return nil
	}
	return d.bun.Close()
}

// RunMigrations applies the embedded migrations for dbType that are not yet
// recorded in schema_migrations. Each migration runs in its own transaction.
func RunMigrations(db *sql.DB, dbType string) error {
	start := time.Now()
	dbLogf("db: starting migrations for %s", dbType)
	migrationsPath := fmt.Sprintf("migrations/%s", dbType)

	entries, err := fs.ReadDir(embeddedMigrations, migrationsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			dbLogf("db: no migrations embedded for %s", dbType)
			return nil
		}
		return fmt.Errorf("failed to read embedded migrations (%s): %w", migrationsPath, err)
	}

	var ups []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasSuffix(name, ".up.sql") {
			ups = append(ups, name)
		}
	}
	sort.Strings(ups)

	if err := ensureSchemaMigrationsTable(db, dbType); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	selectQuery := "SELECT 1 FROM schema_migrations WHERE version = ?"
	insertQuery := "INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)"
	if dbType == TypePostgres {
		selectQuery = "SELECT 1 FROM schema_migrations WHERE version = $1"
		insertQuery = "INSERT INTO schema_migrations(version, applied_at) VALUES($1, $2)"
	}

	applied := 0
	for _, fname := range ups {
		version := strings.TrimSuffix(fname, ".up.sql")

		var exists int
		err := db.QueryRow(selectQuery, version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check migration version %s: %w", version, err)
		}

		p := path.Join(migrationsPath, fname)
		data, err := embeddedMigrations.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", p, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", version, err)
		}
		for _, stmt := range splitStatements(string(data)) {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to execute migration %s: %w", version, err)
			}
		}
		if _, err := tx.Exec(insertQuery, version, time.Now()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to commit migration %s: %w", version, err)
		}
		applied++
	}

	dbLogf("db: applied %d migrations for %s in %s", applied, dbType, time.Since(start))
	return nil
}

// splitStatements splits a migration file on ';' line endings. The MySQL
// driver refuses multi-statement Exec calls unless the DSN opts in.
func splitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";\n") {
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ";"))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ensureSchemaMigrationsTable creates schema_migrations if missing.
func ensureSchemaMigrationsTable(db *sql.DB, dbType string) error {
	// MySQL cannot index TEXT without a length.
	ddl := `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP)`
	if dbType == TypeMySQL {
		ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(191) PRIMARY KEY, applied_at TIMESTAMP)`
	}
	_, err := db.Exec(ddl)
	return err
}

// RunMaintenance performs engine-specific maintenance. For SQLite this runs
// PRAGMA optimize, VACUUM and an integrity check; for Postgres VACUUM
// ANALYZE; for MySQL OPTIMIZE TABLE on every table.
func (d *DB) RunMaintenance(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	switch d.dbType {
	case TypeSQLite:
		if _, err := ExecRaw(ctx, d.bun, "PRAGMA optimize"); err != nil {
			dbLogf("db: sqlite optimize failed (ignored): %v", err)
		}
		if _, err := ExecRaw(ctx, d.bun, "VACUUM"); err != nil {
			return fmt.Errorf("sqlite vacuum failed: %w", err)
		}
		var res string
		if err := QueryRawInto(ctx, d.bun, &res, "PRAGMA integrity_check"); err != nil {
			return fmt.Errorf("sqlite integrity_check failed: %w", err)
		}
		if res != "ok" {
			return fmt.Errorf("sqlite integrity_check failed: %s", res)
		}
	case TypePostgres:
		if _, err := ExecRaw(ctx, d.bun, "VACUUM ANALYZE"); err != nil {
			return fmt.Errorf("postgres vacuum failed: %w", err)
		}
	case TypeMySQL:
		var tables []string
		if err := QueryRawInto(ctx, d.bun, &tables, "SHOW TABLES"); err != nil {
			return fmt.Errorf("mysql show tables failed: %w", err)
		}
		var lastErr error
		for _, table := range tables {
			if _, err := ExecRaw(ctx, d.bun, "OPTIMIZE TABLE ?", bun.Ident(table)); err != nil {
				dbLogf("db: mysql optimize table %s failed: %v", table, err)
				lastErr = err
			}
		}
		if lastErr != nil {
			return fmt.Errorf("mysql optimize encountered errors: %w", lastErr)
		}
	default:
		return fmt.Errorf("unsupported db type for maintenance: %s", d.dbType)
	}
	return nil
}
