package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jhojannt/mapping-repo/pkg/models"
)

type fakeReader struct {
	mu      sync.Mutex
	entries map[string][]models.CatalogEntry
	err     error
	calls   int
}

func (f *fakeReader) ListByTenant(_ context.Context, tenantID string) ([]models.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[tenantID], nil
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestBuild(t *testing.T) {
	t.Run("computes missing search keys", func(t *testing.T) {
		idx := Build([]models.CatalogEntry{
			{Categoria: "Roses", Variedad: "Freedom", Color: "Red", Grado: "40cm"},
		}, time.Now())

		require.Len(t, idx.Entries, 1)
		assert.Equal(t, "roses freedom red 40cm", idx.Entries[0].SearchKey)
	})

	t.Run("recomputes stale search keys", func(t *testing.T) {
		idx := Build([]models.CatalogEntry{
			{Categoria: "Tulips", Variedad: "Strong Gold", Color: "Yellow", Grado: "36cm", SearchKey: "outdated key"},
		}, time.Now())

		assert.Equal(t, "tulips strong gold yellow 36cm", idx.Entries[0].SearchKey)
	})

	t.Run("preserves entry order", func(t *testing.T) {
		idx := Build([]models.CatalogEntry{
			{CatalogID: "B", Categoria: "Roses"},
			{CatalogID: "A", Categoria: "Tulips"},
		}, time.Now())

		assert.Equal(t, "B", idx.Entries[0].CatalogID)
		assert.Equal(t, "A", idx.Entries[1].CatalogID)
	})
}

func TestIndexIsStale(t *testing.T) {
	now := time.Now()
	idx := &Index{BuiltAt: now}

	assert.False(t, idx.IsStale(now.Add(299*time.Second), 300*time.Second))
	assert.True(t, idx.IsStale(now.Add(301*time.Second), 300*time.Second))
}

func TestCache(t *testing.T) {
	entries := map[string][]models.CatalogEntry{
		"tenant-a": {{CatalogID: "CAT-001", Categoria: "Roses", Variedad: "Freedom", Color: "Red", Grado: "40cm"}},
	}

	t.Run("serves within TTL without rereading", func(t *testing.T) {
		reader := &fakeReader{entries: entries}
		cache := NewCache(reader, noopLogger(), DefaultCacheConfig())

		first, err := cache.Get(context.Background(), "tenant-a")
		require.NoError(t, err)
		second, err := cache.Get(context.Background(), "tenant-a")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, reader.calls)
	})

	t.Run("invalidate forces a rebuild", func(t *testing.T) {
		reader := &fakeReader{entries: entries}
		cache := NewCache(reader, noopLogger(), DefaultCacheConfig())

		_, err := cache.Get(context.Background(), "tenant-a")
		require.NoError(t, err)

		cache.Invalidate("tenant-a")

		_, err = cache.Get(context.Background(), "tenant-a")
		require.NoError(t, err)
		assert.Equal(t, 2, reader.calls)
	})

	t.Run("failed rebuild falls back to the stale snapshot", func(t *testing.T) {
		reader := &fakeReader{entries: entries}
		cache := NewCache(reader, noopLogger(), CacheConfig{TTL: 0})

		first, err := cache.Get(context.Background(), "tenant-a")
		require.NoError(t, err)

		reader.err = errors.New("connection refused")

		second, err := cache.Get(context.Background(), "tenant-a")
		require.NoError(t, err)
		assert.Equal(t, first.Entries, second.Entries)
	})

	t.Run("failed first build surfaces the error", func(t *testing.T) {
		reader := &fakeReader{err: errors.New("connection refused")}
		cache := NewCache(reader, noopLogger(), DefaultCacheConfig())

		_, err := cache.Get(context.Background(), "tenant-a")
		assert.Error(t, err)
	})

	t.Run("tenants are isolated", func(t *testing.T) {
		reader := &fakeReader{entries: entries}
		cache := NewCache(reader, noopLogger(), DefaultCacheConfig())

		idx, err := cache.Get(context.Background(), "tenant-b")
		require.NoError(t, err)
		assert.Empty(t, idx.Entries)

		idx, err = cache.Get(context.Background(), "tenant-a")
		require.NoError(t, err)
		assert.Len(t, idx.Entries, 1)
	})
}
