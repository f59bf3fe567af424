package sizer

import (
	"context"
	"time"
)

type listingViewKey struct{}

// WithListingView marks the request as coming from a high-churn listing
// view, where a short fixed memory TTL applies.
func WithListingView(ctx context.Context) context.Context {
	return context.WithValue(ctx, listingViewKey{}, true)
}

// IsListingView reports whether the request was marked with WithListingView
func IsListingView(ctx context.Context) bool {
	v, _ := ctx.Value(listingViewKey{}).(bool)
	return v
}

// MemoryTTL returns how long a size may stay in memory when the persisted
// value is elapsed old. A listing view always gets the override. Otherwise
// the entry lives for what remains of base; false means don't cache.
func MemoryTTL(base, elapsed, override time.Duration, listingView bool) (time.Duration, bool) {
	if listingView && override > 0 {
		return override, true
	}
	ttl := base - elapsed
	if ttl <= 0 {
		return 0, false
	}
	return ttl, true
}
