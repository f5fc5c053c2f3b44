// Package db persists per-session usage totals to a local SQLite ledger.
// Only aggregates are stored; message text never touches disk.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps separate reader and writer connections to the same SQLite
// database. SQLite allows one writer at a time; funneling writes through a
// single connection avoids SQLITE_BUSY errors.
type Store struct {
	Writer *sql.DB
	Reader *sql.DB
}

// Open opens the ledger database at path, creating the file and its parent
// directory if needed, and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)

	writer, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite3", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}

	s := &Store{Writer: writer, Reader: reader}
	if err := s.createSchema(); err != nil {
		writer.Close()
		reader.Close()
		return nil, err
	}
	return s, nil
}

// Close closes both connections, returning the first error.
func (s *Store) Close() error {
	var firstErr error
	if err := s.Writer.Close(); err != nil {
		firstErr = err
	}
	if err := s.Reader.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
