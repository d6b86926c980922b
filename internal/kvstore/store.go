// Package kvstore provides the SQLite-backed key-value primitives the
// ledger kernel is built on: get/put/exists/append/range/len/counter_next,
// each scoped to a single invocation transaction.
package kvstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store provides persistent key-value storage for the ledger.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Config holds store configuration.
type Config struct {
	DataDir string
}

// New creates a new Store instance, opening (and if necessary creating)
// the backing SQLite database under cfg.DataDir.
func New(cfg *Config) (*Store, error) {
	dataDir := expandPath(cfg.DataDir)

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ledger.db")

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite only supports one writer; a single connection doubles as
	// the serialization mechanism for one-invocation-at-a-time kernel
	// operations.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

const schema = `
CREATE TABLE IF NOT EXISTS kv_blobs (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS kv_entries (
	key   TEXT NOT NULL,
	seq   INTEGER NOT NULL,
	entry BLOB NOT NULL,
	PRIMARY KEY (key, seq)
);

CREATE TABLE IF NOT EXISTS kv_counters (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
`

func (s *Store) initSchema() error {
	_, err := s.db.Exec(schema)
	return err
}

// Begin starts a new invocation-scoped transaction. Every kernel
// operation runs inside exactly one such transaction, giving it
// serializable, all-or-nothing semantics over the primitives below.
func (s *Store) Begin() (*Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
