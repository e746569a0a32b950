package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/lehigh-university-libraries/bggsearch/internal/models"
)

// FileStore keeps entries in a JSON document on disk. Writes replace the file
// atomically; without WithFileLock concurrent processes are last-writer-wins.
type FileStore struct {
	path    string
	logger  *slog.Logger
	lock    *flock.Flock
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
}

// FileOption configures a FileStore
type FileOption func(*FileStore)

// WithFileLock serializes writers across processes with an advisory lock
// next to the cache file. Each write reloads the file under the lock first.
func WithFileLock(enabled bool) FileOption {
	return func(s *FileStore) {
		if enabled {
			s.lock = flock.New(s.path + ".lock")
		}
	}
}

// NewFileStore opens the JSON cache at path. The file is created lazily on the
// first write; an unreadable file is logged and treated as empty.
func NewFileStore(path string, logger *slog.Logger, opts ...FileOption) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cache path required")
	}

	s := &FileStore{
		path:    path,
		logger:  componentLogger(logger, BackendFile),
		entries: make(map[string]models.CacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.lock != nil {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	if err := s.load(); err != nil {
		s.logger.Warn("failed to load icon cache, starting empty", "path", path, "error", err)
	}

	return s, nil
}

// Path returns the location of the cache document
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, found := s.entries[strings.TrimSpace(key)]
	return entry.Path, found, nil
}

func (s *FileStore) Set(_ context.Context, key, path string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	err = s.mutate(func(entries map[string]models.CacheEntry) error {
		entries[key] = models.CacheEntry{Key: key, Path: path, CachedAt: time.Now().UTC()}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("cached icon path", "key", key, "path", path)
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	key = strings.TrimSpace(key)
	err := s.mutate(func(entries map[string]models.CacheEntry) error {
		if _, exists := entries[key]; !exists {
			return ErrNotFound
		}
		delete(entries, key)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("removed icon from cache", "key", key)
	return nil
}

func (s *FileStore) List(_ context.Context) ([]models.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.CacheEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	sortNewestFirst(entries)
	return entries, nil
}

func (s *FileStore) Clear(_ context.Context) error {
	return s.mutate(func(entries map[string]models.CacheEntry) error {
		for key := range entries {
			delete(entries, key)
		}
		return nil
	})
}

func (s *FileStore) Close() error {
	return nil
}

// mutate applies fn to a copy of the entries and keeps the copy only once it
// has been persisted
func (s *FileStore) mutate(fn func(map[string]models.CacheEntry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lock != nil {
		if err := s.lock.Lock(); err != nil {
			return fmt.Errorf("acquire cache lock: %w", err)
		}
		defer func() {
			if err := s.lock.Unlock(); err != nil {
				s.logger.Warn("failed to release cache lock", "error", err)
			}
		}()
		if err := s.load(); err != nil {
			s.logger.Warn("failed to reload icon cache under lock", "error", err)
		}
	}

	next := maps.Clone(s.entries)
	if err := fn(next); err != nil {
		return err
	}
	if err := s.save(next); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	s.entries = next
	return nil
}

// load reads the cache from disk into memory
func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.entries = make(map[string]models.CacheEntry)
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var entries []models.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	s.entries = make(map[string]models.CacheEntry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Key) != "" {
			s.entries[entry.Key] = entry
		}
	}

	s.logger.Debug("loaded icon cache", "entry_count", len(s.entries), "path", s.path)
	return nil
}

// save writes entries to disk atomically. Each write goes through its own
// temp file so unlocked writers in other processes never share one.
func (s *FileStore) save(current map[string]models.CacheEntry) error {
	entries := make([]models.CacheEntry, 0, len(current))
	for _, entry := range current {
		entries = append(entries, entry)
	}
	sortNewestFirst(entries)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Chmod(0o644)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
