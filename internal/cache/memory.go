package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/bggsearch/internal/models"
)

// MemoryStore keeps entries for the lifetime of the process only
type MemoryStore struct {
	entries map[string]models.CacheEntry
	mu      sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]models.CacheEntry),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, exists := s.entries[key]
	return entry.Path, exists, nil
}

func (s *MemoryStore) Set(_ context.Context, key, path string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = models.CacheEntry{Key: key, Path: path, CachedAt: time.Now().UTC()}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; !exists {
		return ErrNotFound
	}
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.CacheEntry, 0, len(s.entries))
	for _, v := range s.entries {
		result = append(result, v)
	}
	sortNewestFirst(result)
	return result, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]models.CacheEntry)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func sortNewestFirst(entries []models.CacheEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CachedAt.Equal(entries[j].CachedAt) {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})
}
