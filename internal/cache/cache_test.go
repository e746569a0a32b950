package cache_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/bggsearch/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func openBackends(t *testing.T) map[string]cache.Store {
	t.Helper()
	dir := t.TempDir()

	file, err := cache.Open(cache.Options{Backend: cache.BackendFile, Path: filepath.Join(dir, "icons.json")})
	require.NoError(t, err)
	locked, err := cache.Open(cache.Options{Backend: cache.BackendFile, Path: filepath.Join(dir, "locked", "icons.json"), Lock: true})
	require.NoError(t, err)
	db, err := cache.Open(cache.Options{Backend: cache.BackendSQLite, Path: filepath.Join(dir, "icons.db")})
	require.NoError(t, err)
	mem, err := cache.Open(cache.Options{Backend: cache.BackendMemory})
	require.NoError(t, err)

	stores := map[string]cache.Store{"file": file, "file+lock": locked, "sqlite": db, "memory": mem}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := store.Get(ctx, "972618")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, store.Set(ctx, "972618", "/tmp/972618.png"))
			path, found, err := store.Get(ctx, "972618")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "/tmp/972618.png", path)

			require.NoError(t, store.Set(ctx, "972618", "/var/icons/972618.png"))
			path, _, err = store.Get(ctx, "972618")
			require.NoError(t, err)
			assert.Equal(t, "/var/icons/972618.png", path)

			require.NoError(t, store.Set(ctx, "2437871", "/tmp/2437871.png"))
			entries, err := store.List(ctx)
			require.NoError(t, err)
			assert.Len(t, entries, 2)

			require.NoError(t, store.Delete(ctx, "972618"))
			require.ErrorIs(t, store.Delete(ctx, "972618"), cache.ErrNotFound)

			require.ErrorIs(t, store.Set(ctx, "  ", "/tmp/x.png"), cache.ErrEmptyKey)

			require.NoError(t, store.Clear(ctx))
			entries, err = store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "icons.json")

	first, err := cache.NewFileStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "972618", "/tmp/972618.png"))

	second, err := cache.NewFileStore(path, nil)
	require.NoError(t, err)
	got, found, err := second.Get(ctx, "972618")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/tmp/972618.png", got)
}

func TestFileStoreLockMergesOtherWriters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "icons.json")

	a, err := cache.NewFileStore(path, nil, cache.WithFileLock(true))
	require.NoError(t, err)
	b, err := cache.NewFileStore(path, nil, cache.WithFileLock(true))
	require.NoError(t, err)

	require.NoError(t, a.Set(ctx, "1", "/tmp/1.png"))
	require.NoError(t, b.Set(ctx, "2", "/tmp/2.png"))

	reread, err := cache.NewFileStore(path, nil)
	require.NoError(t, err)
	entries, err := reread.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileStoreWithoutLockIsLastWriterWins(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "icons.json")

	a, err := cache.NewFileStore(path, nil)
	require.NoError(t, err)
	b, err := cache.NewFileStore(path, nil)
	require.NoError(t, err)

	require.NoError(t, a.Set(ctx, "1", "/tmp/1.png"))
	require.NoError(t, b.Set(ctx, "2", "/tmp/2.png"))

	reread, err := cache.NewFileStore(path, nil)
	require.NoError(t, err)
	_, found, err := reread.Get(ctx, "1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileStoreConcurrentUnlockedWritersNeverFail(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "icons.json")

	a, err := cache.NewFileStore(path, nil)
	require.NoError(t, err)
	b, err := cache.NewFileStore(path, nil)
	require.NoError(t, err)

	var g errgroup.Group
	for name, store := range map[string]*cache.FileStore{"a": a, "b": b} {
		g.Go(func() error {
			for i := range 200 {
				key := fmt.Sprintf("%s-%d", name, i)
				if err := store.Set(ctx, key, "/tmp/"+key+".png"); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	reread, err := cache.NewFileStore(path, nil)
	require.NoError(t, err)
	entries, err := reread.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 200)

	leftovers, err := filepath.Glob(path + ".*.tmp")
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStoreFailedWriteLeavesEntriesUnchanged(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	store, err := cache.NewFileStore(filepath.Join(blocker, "icons.json"), nil)
	require.NoError(t, err)

	require.Error(t, store.Set(ctx, "1", "/tmp/1.png"))

	_, found, err := store.Get(ctx, "1")
	require.NoError(t, err)
	assert.False(t, found)
	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icons.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := cache.NewFileStore(path, nil)
	require.NoError(t, err)
	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := cache.Open(cache.Options{Backend: "redis", Path: "x"})
	require.Error(t, err)
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := cache.NewFileStore(" ", nil)
	require.Error(t, err)
}
