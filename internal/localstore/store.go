// Package localstore is the client's durable local state: a small
// key-value table in an embedded sqlite database under the user's
// data directory. It plays the role a browser's localStorage would -
// single writer per process, last write wins, no cross-process
// coordination.
package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Well-known keys. Values are opaque strings; the guest cart value is
// a JSON array owned by the guest cart service.
const (
	KeyGuestCart = "guestCart"
	KeyAuthToken = "authToken"
	KeyClientID  = "clientId"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// Store is a durable string KV backed by sqlite.
type Store struct {
	db *sqlx.DB
}

// Open creates or opens the client database at dir/shop.db.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, "shop.db")

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open client database %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize kv table: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the value for key and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// Put writes or overwrites the value for key.
func (s *Store) Put(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes key if present. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
