package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CallMetric records metadata for a single external catalog call.
type CallMetric struct {
	Operation string
	CacheHit  bool
	Status    string
	LatencyMS int64
}

// Store handles persistence of catalog call metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m CallMetric) error {
	cacheHit := 0
	if m.CacheHit {
		cacheHit = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO catalog_metrics (operation, cache_hit, status, latency_ms) VALUES (?, ?, ?, ?)`,
		m.Operation, cacheHit, m.Status, m.LatencyMS,
	)
	if err != nil {
		return fmt.Errorf("failed to record catalog metric: %w", err)
	}
	return nil
}

// OperationUsage represents call totals for a single operation.
type OperationUsage struct {
	Operation string `json:"operation"`
	Calls     int    `json:"calls"`
	CacheHits int    `json:"cache_hits"`
}

// GetUsage retrieves per-operation call totals for the last N days.
func (s *Store) GetUsage(ctx context.Context, days int) ([]OperationUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx,
		`SELECT operation, COUNT(*), COALESCE(SUM(cache_hit), 0)
		 FROM catalog_metrics
		 WHERE created_at >= ?
		 GROUP BY operation
		 ORDER BY operation`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog usage: %w", err)
	}
	defer rows.Close()

	var results []OperationUsage
	for rows.Next() {
		var u OperationUsage
		if err := rows.Scan(&u.Operation, &u.Calls, &u.CacheHits); err != nil {
			return nil, fmt.Errorf("failed to scan catalog usage row: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns the number of removed rows.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM catalog_metrics WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up catalog metrics: %w", err)
	}
	return res.RowsAffected()
}

// CleanupLoop runs a retention pass immediately and then on every tick
// until the context is cancelled. Intended to be started as a goroutine at
// process startup.
func (s *Store) CleanupLoop(ctx context.Context, interval time.Duration, retentionDays int, logger *zap.Logger) {
	s.cleanupPass(ctx, retentionDays, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupPass(ctx, retentionDays, logger)
		}
	}
}

func (s *Store) cleanupPass(ctx context.Context, retentionDays int, logger *zap.Logger) {
	passCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	removed, err := s.Cleanup(passCtx, retentionDays)
	if err != nil {
		logger.Warn("catalog metrics cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		logger.Info("cleaned up catalog metrics", zap.Int64("removed", removed))
	}
}
