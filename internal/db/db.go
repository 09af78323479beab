// Package db provides SQLite storage for chew collections.
//
// The database is stored at ~/.chew/chew.db by default.
// Use Open() to connect and Init() to create the schema.
// Each named collection is reached through Namespace, which returns a
// collection.Store.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY,
	last_order INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	collection TEXT NOT NULL REFERENCES collections(name),
	title TEXT NOT NULL,
	food TEXT NOT NULL DEFAULT '',
	count TEXT NOT NULL DEFAULT '',
	cal TEXT NOT NULL DEFAULT '',
	done INTEGER NOT NULL DEFAULT 0,
	ord INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (collection, ord)
);

CREATE INDEX IF NOT EXISTS idx_items_collection ON items(collection);
CREATE INDEX IF NOT EXISTS idx_items_done ON items(done);
`

// DB wraps a SQL database connection with collection operations.
type DB struct {
	*sql.DB
}

// DefaultPath returns the default database path (~/.chew/chew.db)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".chew", "chew.db"), nil
}

// Open opens or creates the database at the given path
func Open(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// Init creates the schema.
func (db *DB) Init() error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// EnsureCollection creates the named collection if it doesn't exist.
func (db *DB) EnsureCollection(name string) error {
	_, err := db.Exec(`INSERT OR IGNORE INTO collections (name) VALUES (?)`, name)
	if err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	return nil
}
