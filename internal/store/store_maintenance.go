package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Stats returns animation and frame totals.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT (SELECT COUNT(1) FROM animations), (SELECT COUNT(1) FROM frames)`)
	if err := row.Scan(&stats.Animations, &stats.Frames); err != nil {
		return Stats{}, fmt.Errorf("store stats: %w", err)
	}
	return stats, nil
}

// CheckHealth returns diagnostic information about the animation database,
// including animations whose cached frame_count disagrees with their frames.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping database: %w", err)
	}
	health.DatabaseReadable = true

	if err := s.db.QueryRowContext(connCtx, "SELECT version FROM schema_version LIMIT 1").Scan(&health.SchemaVersion); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("read schema version: %w", err)
	}

	stats, err := s.Stats(connCtx)
	if err != nil {
		health.Error = err.Error()
		return health, err
	}
	health.Animations = stats.Animations
	health.Frames = stats.Frames

	rows, err := s.db.QueryContext(connCtx, `
        SELECT a.id FROM animations a
        LEFT JOIN (SELECT animation_id, COUNT(1) AS n FROM frames GROUP BY animation_id) f ON f.animation_id = a.id
        WHERE a.frame_count != COALESCE(f.n, 0)
        ORDER BY a.id`)
	if err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("check frame counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("scan drifted animation: %w", err)
		}
		health.DriftedCounts = append(health.DriftedCounts, id)
	}
	if err := rows.Err(); err != nil {
		health.Error = err.Error()
		return health, err
	}

	var integrityResult string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}
