// Package cache persists the mapping from representative image ids to
// downloaded icon files across invocations.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/bggsearch/internal/models"
)

var (
	// ErrNotFound is returned when deleting a key that is not cached
	ErrNotFound = errors.New("cache key not found")
	// ErrEmptyKey is returned when a blank key is written
	ErrEmptyKey = errors.New("cache key cannot be empty")
)

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Store is a durable key/value store of icon paths. Entries never expire.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, path string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]models.CacheEntry, error)
	Clear(ctx context.Context) error
	Close() error
}

// Options selects and configures a Store backend
type Options struct {
	Backend string
	Path    string
	Lock    bool
	Logger  *slog.Logger
}

// Open returns the Store described by opts
func Open(opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileStore(opts.Path, opts.Logger, WithFileLock(opts.Lock))
	case BackendSQLite:
		return OpenSQLite(opts.Path, opts.Logger)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", opts.Backend)
	}
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	return key, nil
}

func componentLogger(logger *slog.Logger, backend string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", "cache", "backend", backend)
}
