package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bggsearch/internal/models"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS icon_cache (
	key TEXT PRIMARY KEY,
	path TEXT NOT NULL,
	cached_at TEXT NOT NULL
)`

// SQLiteStore keeps entries in a SQLite database, relying on SQLite's own
// locking when several invocations write at once.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite initializes or connects to the cache database at path
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path, logger: componentLogger(logger, BackendSQLite)}, nil
}

// Path returns the location of the database file
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var path string
	err := s.db.QueryRowContext(ctx, "SELECT path FROM icon_cache WHERE key = ?", strings.TrimSpace(key)).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query cache: %w", err)
	}
	return path, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, path string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO icon_cache (key, path, cached_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET path = excluded.path, cached_at = excluded.cached_at`,
		key, path, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	s.logger.Debug("cached icon path", "key", key, "path", path)
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM icon_cache WHERE key = ?", strings.TrimSpace(key))
	if err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, path, cached_at FROM icon_cache")
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var entries []models.CacheEntry
	for rows.Next() {
		var entry models.CacheEntry
		var cachedAt string
		if err := rows.Scan(&entry.Key, &entry.Path, &cachedAt); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, cachedAt); err == nil {
			entry.CachedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}
	sortNewestFirst(entries)
	return entries, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM icon_cache"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
