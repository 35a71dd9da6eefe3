// Package cache stores resolved records keyed by the canonical query
// string. Entries expire by TTL checked at read time; nothing is evicted
// in the background. A stale entry is simply a miss.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sekitap/kitaplik/internal/book"
)

const schema = `
	CREATE TABLE IF NOT EXISTS resolution_cache (
		cache_key TEXT PRIMARY KEY NOT NULL,
		data      TEXT NOT NULL,
		cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

// Store is a sqlite-backed TTL cache of resolved records. Safe for
// concurrent use; writes are last-writer-wins.
type Store struct {
	db   *sql.DB
	mu   sync.RWMutex
	ttl  time.Duration
	path string
}

// Open opens (creating if needed) the cache database at path. The TTL
// governs read-time freshness for every Get.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to cache database: %w", err), closeErr)
	}

	if _, err := db.Exec(schema); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to create cache table: %w", err), closeErr)
	}

	return &Store{db: db, ttl: ttl, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the cached record for key, or (nil, false) on a miss. An
// entry older than the TTL is a miss; it stays on disk until overwritten
// or cleared.
func (s *Store) Get(key string) (*book.Record, bool, error) {
	if key == "" {
		return nil, false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	var cachedAt time.Time
	err := s.db.QueryRow(
		"SELECT data, cached_at FROM resolution_cache WHERE cache_key = ?", key,
	).Scan(&data, &cachedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}

	age := time.Now().UTC().Sub(cachedAt)
	if age > s.ttl {
		slog.Debug("Cache entry expired", "key", key, "age", age)
		return nil, false, nil
	}

	var record book.Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		slog.Warn("Failed to unmarshal cached record, treating as miss", "key", key, "error", err)
		return nil, false, nil
	}

	return &record, true, nil
}

// Put stores a record under key, overwriting any previous entry.
func (s *Store) Put(key string, record *book.Record) error {
	if key == "" || record == nil {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record for caching: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO resolution_cache (cache_key, data, cached_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Count returns the number of stored entries, fresh and stale alike.
func (s *Store) Count() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM resolution_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

// ClearExpired removes entries older than the TTL. Optional maintenance;
// correctness never depends on it.
func (s *Store) ClearExpired() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-s.ttl)
	result, err := s.db.Exec("DELETE FROM resolution_cache WHERE cached_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired cache entries: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		slog.Info("Cleared expired cache entries", "count", rows)
	}
	return rows, nil
}

// ClearAll removes every entry.
func (s *Store) ClearAll() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec("DELETE FROM resolution_cache")
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}

	rows, _ := result.RowsAffected()
	slog.Info("Cache cleared", "count", rows)
	return rows, nil
}
