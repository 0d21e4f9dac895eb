package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// CacheRepository persists provider responses in the response_cache table.
// It satisfies the services cache contract: services call GetOrCompute around
// their HTTP requests and repeated queries are served from SQLite.
type CacheRepository struct {
	db *sql.DB
}

// NewCacheRepository creates a new [CacheRepository] with the given database connection
func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// Get returns the cached body for key, with ok reporting whether it exists.
func (r *CacheRepository) Get(key string) ([]byte, bool, error) {
	var body []byte
	err := r.db.QueryRow("SELECT body FROM response_cache WHERE key = ?", key).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}
	return body, true, nil
}

// Put stores a body under key, replacing any previous entry.
func (r *CacheRepository) Put(key string, body []byte) error {
	query := `
		INSERT INTO response_cache (key, body, created_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, created_at = excluded.created_at
	`
	if _, err := r.db.Exec(query, key, body, time.Now()); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// GetOrCompute returns the cached value for key, or runs compute and stores
// the result. compute errors are returned without caching; a failed store is
// also an error, since a silently cold cache would hide real problems.
func (r *CacheRepository) GetOrCompute(key string, compute func() ([]byte, error)) ([]byte, error) {
	if body, ok, err := r.Get(key); err != nil {
		return nil, err
	} else if ok {
		return body, nil
	}

	body, err := compute()
	if err != nil {
		return nil, err
	}

	if err := r.Put(key, body); err != nil {
		return nil, err
	}
	return body, nil
}

// Stats reports the number of cached entries and the age of the oldest one.
func (r *CacheRepository) Stats() (count int, oldest time.Time, err error) {
	var ts sql.NullTime
	err = r.db.QueryRow("SELECT COUNT(*), MIN(created_at) FROM response_cache").Scan(&count, &ts)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to query cache stats: %w", err)
	}
	if ts.Valid {
		oldest = ts.Time
	}
	return count, oldest, nil
}

// Clear removes every cached entry and returns how many were removed.
func (r *CacheRepository) Clear() (int64, error) {
	result, err := r.db.Exec("DELETE FROM response_cache")
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	return result.RowsAffected()
}

// Prune removes entries older than the cutoff.
func (r *CacheRepository) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := r.db.Exec("DELETE FROM response_cache WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	return result.RowsAffected()
}
