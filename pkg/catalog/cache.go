package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Jhojannt/mapping-repo/pkg/models"
)

// Reader loads catalog rows from storage
type Reader interface {
	ListByTenant(ctx context.Context, tenantID string) ([]models.CatalogEntry, error)
}

// CacheConfig configures the catalog cache
type CacheConfig struct {
	TTL time.Duration
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 300 * time.Second}
}

// Cache holds one Index per tenant. Snapshots are served until they go stale
// or are explicitly invalidated by a catalog mutation. Rebuilds are serialized
// per tenant; a failed rebuild falls back to the previous snapshot.
type Cache struct {
	reader Reader
	logger ectologger.Logger
	ttl    time.Duration

	mu      sync.RWMutex
	indexes map[string]*Index
	builds  map[string]*sync.Mutex

	hits   int64
	misses int64
}

// NewCache creates a new catalog cache
func NewCache(reader Reader, logger ectologger.Logger, config CacheConfig) *Cache {
	return &Cache{
		reader:  reader,
		logger:  logger,
		ttl:     config.TTL,
		indexes: make(map[string]*Index),
		builds:  make(map[string]*sync.Mutex),
	}
}

// Get returns the tenant's index, rebuilding when missing or stale. When the
// rebuild fails and a previous snapshot exists, the stale snapshot is returned
// so matching can continue best-effort.
func (c *Cache) Get(ctx context.Context, tenantID string) (*Index, error) {
	c.mu.RLock()
	idx, exists := c.indexes[tenantID]
	c.mu.RUnlock()

	if exists && !idx.IsStale(time.Now(), c.ttl) {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return idx, nil
	}

	build := c.buildLock(tenantID)
	build.Lock()
	defer build.Unlock()

	// another caller may have rebuilt while we waited
	c.mu.RLock()
	idx, exists = c.indexes[tenantID]
	c.mu.RUnlock()
	if exists && !idx.IsStale(time.Now(), c.ttl) {
		return idx, nil
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()

	entries, err := c.reader.ListByTenant(ctx, tenantID)
	if err != nil {
		if exists {
			c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"tenant_id": tenantID,
			}).Warn("Catalog rebuild failed, serving stale index")
			return idx, nil
		}
		return nil, err
	}

	fresh := Build(entries, time.Now())

	c.mu.Lock()
	c.indexes[tenantID] = fresh
	c.mu.Unlock()

	return fresh, nil
}

// Invalidate drops the tenant's snapshot so the next Get rebuilds. Call after
// any catalog mutation, staging inserts included.
func (c *Cache) Invalidate(tenantID string) {
	c.mu.Lock()
	delete(c.indexes, tenantID)
	c.mu.Unlock()
}

// Clear removes every snapshot.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.indexes = make(map[string]*Index)
	c.mu.Unlock()
}

// CacheStats returns cache statistics
type CacheStats struct {
	Size   int
	Hits   int64
	Misses int64
}

func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Size:   len(c.indexes),
		Hits:   c.hits,
		Misses: c.misses,
	}
}

func (c *Cache) buildLock(tenantID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.builds[tenantID]
	if !ok {
		lock = &sync.Mutex{}
		c.builds[tenantID] = lock
	}
	return lock
}
