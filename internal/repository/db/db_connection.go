package db

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Store drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	sqliteDriverName   = "sqlite"
	postgresDriverName = "pgx"
)

var errUnsupportedDriver = errors.New("unsupported store driver")

// Open connects to the configured database and ensures the log table exists.
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		return InitSQLite(dsn)
	case DriverPostgres:
		return InitPostgres(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedDriver, driver)
	}
}

// InitSQLite opens/creates a SQLite DB file and ensures tables exist.
func InitSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	return finishInit(db, schemaSQLite)
}

// InitPostgres connects through pgx's database/sql driver.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open(postgresDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return finishInit(db, schemaPostgres)
}

func finishInit(db *sql.DB, schema []string) (*sql.DB, error) {
	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := ensureSchema(db, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// occurred_at is fixed-width UTC text (parser.SortableLayout), NULL when the
// raw timestamp did not parse.
var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS vehicle_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    raw_timestamp TEXT NOT NULL,
    occurred_at TEXT,
    vehicle_id TEXT NOT NULL,
    level TEXT NOT NULL,
    code TEXT NOT NULL,
    message TEXT NOT NULL
);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_logs_vehicle_id ON vehicle_logs (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_logs_occurred_at ON vehicle_logs (occurred_at);`,
	`CREATE TABLE IF NOT EXISTS upload_batches (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    lines INTEGER NOT NULL,
    stored INTEGER NOT NULL,
    skipped INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);`,
}

// Byte-order collation keeps text ordering identical to SQLite's BINARY.
var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS vehicle_logs (
    id BIGSERIAL PRIMARY KEY,
    raw_timestamp TEXT NOT NULL,
    occurred_at TEXT COLLATE "C",
    vehicle_id TEXT COLLATE "C" NOT NULL,
    level TEXT COLLATE "C" NOT NULL,
    code TEXT COLLATE "C" NOT NULL,
    message TEXT COLLATE "C" NOT NULL
);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_logs_vehicle_id ON vehicle_logs (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_logs_occurred_at ON vehicle_logs (occurred_at);`,
	`CREATE TABLE IF NOT EXISTS upload_batches (
    id TEXT COLLATE "C" PRIMARY KEY,
    source TEXT NOT NULL,
    lines INTEGER NOT NULL,
    stored INTEGER NOT NULL,
    skipped INTEGER NOT NULL,
    uploaded_at TEXT COLLATE "C" NOT NULL
);`,
}

func ensureSchema(db *sql.DB, schema []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range schema {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
