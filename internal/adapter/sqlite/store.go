package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vertextoedge/site-size-cache/internal/domain"
	"github.com/vertextoedge/site-size-cache/internal/port"
)

// Options tunes the SQLite connection
type Options struct {
	BusyTimeoutMs int
	CacheSizeMB   int
}

// Store implements port.Store interface using SQLite
type Store struct {
	db *sql.DB
}

// Ensure Store implements port.Store
var _ port.Store = (*Store)(nil)

// Open opens a connection to the SQLite database with default options
func Open(dbPath string) (*Store, error) {
	return OpenWithOptions(dbPath, Options{})
}

// OpenWithOptions opens a connection to the SQLite database
func OpenWithOptions(dbPath string, opts Options) (*Store, error) {
	if opts.BusyTimeoutMs <= 0 {
		opts.BusyTimeoutMs = 5000
	}
	if opts.CacheSizeMB <= 0 {
		opts.CacheSizeMB = 64
	}

	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_time_format=sqlite",
		dbPath, opts.BusyTimeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA cache_size = -%d", opts.CacheSizeMB*1000),
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks database connectivity
func (s *Store) Ping() error {
	return s.db.Ping()
}

// migrate creates or updates the database schema
func (s *Store) migrate() error {
	migrations := []string{
		// One row per site, upserted on every recompute attempt
		`CREATE TABLE IF NOT EXISTS site_sizes (
			site_id INTEGER PRIMARY KEY,
			site_size INTEGER NOT NULL,
			last_update TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Presence of a row means a recompute is in flight
		`CREATE TABLE IF NOT EXISTS recompute_guards (
			site_id INTEGER PRIMARY KEY,
			acquired_at INTEGER NOT NULL
		)`,

		// Network site directory
		`CREATE TABLE IF NOT EXISTS sites (
			id INTEGER PRIMARY KEY,
			domain TEXT UNIQUE NOT NULL,
			quota_bytes INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recompute_guards_acquired_at ON recompute_guards(acquired_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, migration)
		}
	}

	return nil
}

// GetSizeStats returns size cache statistics
func (s *Store) GetSizeStats(ctx context.Context) (*domain.SizeStats, error) {
	stats := &domain.SizeStats{}

	var totalBytes, errored sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       SUM(CASE WHEN site_size < 0 THEN 1 ELSE 0 END),
		       SUM(CASE WHEN site_size >= 0 THEN site_size ELSE 0 END)
		FROM site_sizes
	`).Scan(&stats.TrackedSites, &errored, &totalBytes)
	if err != nil {
		return nil, err
	}
	stats.ErroredSites = errored.Int64
	stats.TotalBytes = totalBytes.Int64

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recompute_guards").Scan(&stats.HeldGuards)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed: PRIMARY KEY")
}
