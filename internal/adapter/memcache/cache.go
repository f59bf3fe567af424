package memcache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/vertextoedge/site-size-cache/internal/domain"
	"github.com/vertextoedge/site-size-cache/internal/port"
)

// Cache is an in-process size cache with per-entry expiry
type Cache struct {
	items *ttlcache.Cache[domain.TenantID, domain.Size]
}

// Ensure Cache implements port.MemoryCache
var _ port.MemoryCache = (*Cache)(nil)

// New creates a cache holding at most capacity sites (0 = unbounded).
// Hits do not extend an entry's lifetime.
func New(capacity uint64) *Cache {
	opts := []ttlcache.Option[domain.TenantID, domain.Size]{
		ttlcache.WithDisableTouchOnHit[domain.TenantID, domain.Size](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[domain.TenantID, domain.Size](capacity))
	}
	return &Cache{items: ttlcache.New[domain.TenantID, domain.Size](opts...)}
}

// Start runs the expired-entry cleaner until Stop is called
func (c *Cache) Start() {
	c.items.Start()
}

// Stop stops the cleaner
func (c *Cache) Stop() {
	c.items.Stop()
}

// Get returns the cached size of a site
func (c *Cache) Get(id domain.TenantID) (domain.Size, bool) {
	item := c.items.Get(id)
	if item == nil {
		return domain.Size{}, false
	}
	return item.Value(), true
}

// Set caches a size for ttl.
// ttlcache reads 0 as its default TTL and negative values as "never expire",
// so non-positive durations must not reach it.
func (c *Cache) Set(id domain.TenantID, size domain.Size, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.items.Set(id, size, ttl)
}

// Delete drops the cached size of a site
func (c *Cache) Delete(id domain.TenantID) {
	c.items.Delete(id)
}

// Len returns the number of cached entries, including not yet evicted expired ones
func (c *Cache) Len() int {
	return c.items.Len()
}
