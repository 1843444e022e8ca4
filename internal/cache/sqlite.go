package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/ragserve/internal/db"
)

// SQLiteStore persists cache entries in the embedding_cache table. Expired
// rows are filtered on read and purged lazily.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore returns a Store backed by the given database.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM embedding_cache WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	if time.Now().After(expiresAt) {
		// Lazy expiry: drop the stale row and report a miss.
		_, _ = s.db.ExecContext(ctx, `DELETE FROM embedding_cache WHERE key = ?`, key)
		return nil, false, nil
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO embedding_cache (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, time.Now().Add(ttl))
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM embedding_cache WHERE key = ?`, key); err != nil {
			return fmt.Errorf("deleting cache entry: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) DeletePrefix(ctx context.Context, prefix string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM embedding_cache WHERE key LIKE ? || '%'`, prefix)
	if err != nil {
		return fmt.Errorf("deleting cache entries by prefix: %w", err)
	}
	return nil
}
