package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"recipe-finder/internal/recipe"
)

// Cache is a SQLite-backed cache of full recipe records keyed by catalog
// ID. Entries older than the TTL are treated as misses and refreshed by
// the next lookup.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// NewCache creates a Cache on an existing database connection.
func NewCache(db *sql.DB, ttl time.Duration) *Cache {
	return &Cache{db: db, ttl: ttl}
}

// Get returns the cached recipe for the ID, or nil when absent or stale.
func (c *Cache) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	cutoff := time.Now().UTC().Add(-c.ttl)

	var data string
	err := c.db.QueryRowContext(ctx,
		`SELECT data FROM catalog_cache WHERE id = ? AND fetched_at >= ?`, id, cutoff,
	).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached recipe %s: %w", id, err)
	}

	var rec recipe.Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached recipe %s: %w", id, err)
	}
	return &rec, nil
}

// Put inserts or refreshes the cached record for the recipe's ID.
func (c *Cache) Put(ctx context.Context, rec recipe.Recipe) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe %s for cache: %w", rec.ID, err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO catalog_cache (id, data, fetched_at) VALUES (?, ?, ?)`,
		rec.ID, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache recipe %s: %w", rec.ID, err)
	}
	return nil
}
