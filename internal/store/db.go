package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// DB wraps a SQLite database connection for gitfolio storage.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at the given path and runs migrations.
// Use ":memory:" for an in-memory database (useful for testing).
func Open(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	} else {
		dsn = ":memory:?_pragma=foreign_keys(ON)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set connection pool to 1 for SQLite
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store := &DB{db: sqlDB}
	if err := store.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Conn returns the underlying *sql.DB for advanced use cases.
func (d *DB) Conn() *sql.DB {
	return d.db
}

func (d *DB) migrate() error {
	var version int
	err := d.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("reading user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := d.migrateV1(); err != nil {
			return err
		}
	}

	_, err = d.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	if err != nil {
		return fmt.Errorf("setting user_version: %w", err)
	}

	return nil
}

func (d *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			handle TEXT NOT NULL,
			display_name TEXT,
			bio TEXT,
			followers INTEGER NOT NULL DEFAULT 0,
			following INTEGER NOT NULL DEFAULT 0,
			public_repos INTEGER NOT NULL DEFAULT 0,
			fetched_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_handle ON searches(handle)`,
		`CREATE TABLE IF NOT EXISTS search_repos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			search_id INTEGER NOT NULL REFERENCES searches(id),
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			full_name TEXT NOT NULL,
			description TEXT,
			language TEXT,
			stars INTEGER NOT NULL DEFAULT 0,
			forks INTEGER NOT NULL DEFAULT 0,
			fork INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT,
			UNIQUE(search_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS knowledge (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			search_id INTEGER NOT NULL UNIQUE REFERENCES searches(id),
			handle TEXT NOT NULL,
			mode TEXT NOT NULL,
			skills TEXT NOT NULL,
			repos TEXT NOT NULL,
			built_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			search_id INTEGER NOT NULL REFERENCES searches(id),
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_search ON messages(search_id)`,
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration statement: %w", err)
		}
	}

	return tx.Commit()
}
