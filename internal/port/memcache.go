package port

import (
	"time"

	"github.com/vertextoedge/site-size-cache/internal/domain"
)

// MemoryCache is the short-lived size cache in front of the store
type MemoryCache interface {
	// Get returns the cached size; expired entries are misses
	Get(id domain.TenantID) (domain.Size, bool)

	// Set caches a size for ttl; a non-positive ttl is a no-op
	Set(id domain.TenantID, size domain.Size, ttl time.Duration)

	// Delete drops the cached size
	Delete(id domain.TenantID)
}
