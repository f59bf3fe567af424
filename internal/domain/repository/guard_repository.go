package repository

import (
	"context"
	"time"

	"github.com/vertextoedge/site-size-cache/internal/domain"
)

// GuardRepository stores the per-site recompute flags
type GuardRepository interface {
	// AcquireGuard atomically sets the flag for a site
	// Returns false if the flag is already held and was set at or after takeoverBefore.
	// A zero takeoverBefore never takes over a held flag.
	AcquireGuard(ctx context.Context, id domain.TenantID, now, takeoverBefore time.Time) (bool, error)

	// ReleaseGuard clears the flag for a site; clearing a free flag is not an error
	ReleaseGuard(ctx context.Context, id domain.TenantID) error

	// IsGuardHeld reports whether the flag is currently set
	IsGuardHeld(ctx context.Context, id domain.TenantID) (bool, error)

	// ReleaseExpiredGuards clears flags set before cutoff
	// Used when a holder died without releasing
	ReleaseExpiredGuards(ctx context.Context, cutoff time.Time) (int, error)
}
