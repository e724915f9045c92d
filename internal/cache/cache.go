package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrMiss is returned when no snapshot is stored under a key.
var ErrMiss = errors.New("snapshot not cached")

// Store is a SQLite-backed single-table cache of the last successful GET
// payload per resource. It exists so a failed refresh can keep showing stale
// data instead of blanking a screen, including across restarts.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the snapshot cache at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS snapshots (
			key        TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			fetched_at TIMESTAMP NOT NULL
		)
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Put stores payload under key, replacing any previous snapshot.
func (s *Store) Put(key string, payload []byte) error {
	query := `
		INSERT INTO snapshots (key, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`
	_, err := s.db.Exec(query, key, payload, time.Now().UTC())
	return err
}

// Get returns the stored payload and fetch time for key, or ErrMiss.
func (s *Store) Get(key string) ([]byte, time.Time, error) {
	var payload []byte
	var fetchedAt time.Time

	err := s.db.QueryRow(`SELECT payload, fetched_at FROM snapshots WHERE key = ?`, key).
		Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrMiss
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return payload, fetchedAt, nil
}

// Prune deletes snapshots older than maxAge and returns how many were removed.
func (s *Store) Prune(maxAge time.Duration) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM snapshots WHERE fetched_at < ?`, time.Now().UTC().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
