package guard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/site-size-cache/internal/domain"
	"github.com/vertextoedge/site-size-cache/internal/port"
)

// Guard is the per-site recompute semaphore. It is advisory, not reentrant
// and not bound to an owner: any caller may release it.
type Guard struct {
	repo   port.GuardRepository
	lease  time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// New creates a new Guard. A guard older than lease may be taken over by
// the next acquirer; a zero lease disables takeover.
func New(repo port.GuardRepository, lease time.Duration, logger *zap.Logger) *Guard {
	return &Guard{
		repo:   repo,
		lease:  lease,
		now:    time.Now,
		logger: logger,
	}
}

// TryAcquire sets the guard for a site; false means it is already held
func (g *Guard) TryAcquire(ctx context.Context, id domain.TenantID) (bool, error) {
	now := g.now()

	var takeoverBefore time.Time
	if g.lease > 0 {
		takeoverBefore = now.Add(-g.lease)
	}

	ok, err := g.repo.AcquireGuard(ctx, id, now, takeoverBefore)
	if err != nil {
		return false, err
	}
	if ok {
		g.logger.Debug("recompute guard acquired", zap.Int64("site_id", int64(id)))
	}
	return ok, nil
}

// Release clears the guard. Releasing a free guard is a no-op.
func (g *Guard) Release(ctx context.Context, id domain.TenantID) error {
	if err := g.repo.ReleaseGuard(ctx, id); err != nil {
		return err
	}
	g.logger.Debug("recompute guard released", zap.Int64("site_id", int64(id)))
	return nil
}

// IsHeld reports whether a recomputation is in flight for a site
func (g *Guard) IsHeld(ctx context.Context, id domain.TenantID) (bool, error) {
	return g.repo.IsGuardHeld(ctx, id)
}

// Lease returns the takeover lease
func (g *Guard) Lease() time.Duration {
	return g.lease
}
