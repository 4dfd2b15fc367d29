package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB and ensures tables exist.
// path may be a file or ":memory:"; the pool is pinned to one connection so an in-memory
// database is shared by every query.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, p := range pragmas(path) {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", p, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const (
	sqliteDriverName = "sqlite"
	memoryPath       = ":memory:"
)

// pragmas skips WAL for in-memory databases, which cannot use it.
func pragmas(path string) []string {
	out := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	if path != memoryPath {
		out = append([]string{"PRAGMA journal_mode = WAL;"}, out...)
	}
	return out
}

const schemaDeviceEvents = `
CREATE TABLE IF NOT EXISTS device_events (
    id TEXT PRIMARY KEY,
    occurred_at TEXT NOT NULL,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    meta TEXT
);
`

const schemaDeviceEventsIndex = `
CREATE INDEX IF NOT EXISTS idx_device_events_occurred_at ON device_events (occurred_at);
`

const schemaBoardControls = `
CREATE TABLE IF NOT EXISTS board_controls (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    floor_material TEXT NOT NULL,
    floor_thickness_mm REAL NOT NULL,
    floor_max_c REAL NOT NULL,
    nichrome_final_c REAL NOT NULL,
    wire_tau_s REAL NOT NULL,
    wire_k_loss REAL NOT NULL,
    wire_c REAL NOT NULL,
    max_power_w REAL NOT NULL,
    updated_at TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaDeviceEvents,
		schemaDeviceEventsIndex,
		schemaBoardControls,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
