package sizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/site-size-cache/internal/domain"
	"github.com/vertextoedge/site-size-cache/internal/metrics"
	"github.com/vertextoedge/site-size-cache/internal/port"
)

// Calculator computes a site's size from its sources
type Calculator interface {
	Compute(ctx context.Context, id domain.TenantID) (domain.Size, error)
}

// Guard is the per-site recompute semaphore
type Guard interface {
	TryAcquire(ctx context.Context, id domain.TenantID) (bool, error)
	Release(ctx context.Context, id domain.TenantID) error
}

// Config contains size service configuration
type Config struct {
	// Staleness is how long a persisted size is served before it is recomputed
	Staleness time.Duration

	// MemoryDuration is the base lifetime of an in-memory size
	MemoryDuration time.Duration

	// ListingViewTTL is the fixed memory lifetime for listing views
	ListingViewTTL time.Duration

	// NetworkDomain is the primary site's domain; child slugs resolve below it
	NetworkDomain string

	// DefaultQuota is the allowance of sites without their own quota
	DefaultQuota int64
}

// DefaultConfig returns default size service configuration
func DefaultConfig() *Config {
	return &Config{
		Staleness:      12 * time.Hour,
		MemoryDuration: time.Hour,
		ListingViewTTL: 15 * time.Second,
	}
}

// Service answers size queries through the memory and persistent caches,
// recomputing at most once per site at a time
type Service struct {
	config  *Config
	records port.SizeRecordRepository
	tenants port.TenantRepository
	mem     port.MemoryCache
	guard   Guard
	calc    Calculator
	logger  *zap.Logger

	now func() time.Time
}

// New creates a new size Service
func New(cfg *Config, records port.SizeRecordRepository, tenants port.TenantRepository,
	mem port.MemoryCache, guard Guard, calc Calculator, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.ListingViewTTL == 0 {
		cfg.ListingViewTTL = 15 * time.Second
	}

	return &Service{
		config:  cfg,
		records: records,
		tenants: tenants,
		mem:     mem,
		guard:   guard,
		calc:    calc,
		logger:  logger,
		now:     time.Now,
	}
}

// GetSize returns the size of a site. With force the size is recomputed
// unconditionally; otherwise cached values are served while fresh.
func (s *Service) GetSize(ctx context.Context, id domain.TenantID, force bool) (domain.Size, error) {
	if force {
		return s.Refresh(ctx, id)
	}

	if size, ok := s.mem.Get(id); ok {
		metrics.CacheLookups.WithLabelValues(metrics.TierMemory, metrics.ResultHit).Inc()
		return size, nil
	}
	metrics.CacheLookups.WithLabelValues(metrics.TierMemory, metrics.ResultMiss).Inc()

	record, err := s.records.GetSizeRecord(ctx, id)
	if err != nil {
		return domain.Size{}, fmt.Errorf("failed to read size of site %d: %w", id, err)
	}

	now := s.now()
	if record != nil && !record.IsStale(now, s.config.Staleness) {
		metrics.CacheLookups.WithLabelValues(metrics.TierPersistent, metrics.ResultHit).Inc()
		if ttl, ok := MemoryTTL(s.config.MemoryDuration, record.Age(now), s.config.ListingViewTTL, IsListingView(ctx)); ok {
			s.mem.Set(id, record.Size, ttl)
		}
		return record.Size, nil
	}

	if record == nil {
		metrics.CacheLookups.WithLabelValues(metrics.TierPersistent, metrics.ResultMiss).Inc()
	} else {
		metrics.CacheLookups.WithLabelValues(metrics.TierPersistent, metrics.ResultStale).Inc()
	}

	acquired, err := s.guard.TryAcquire(ctx, id)
	if err != nil {
		return domain.Size{}, fmt.Errorf("failed to acquire recompute guard of site %d: %w", id, err)
	}
	if !acquired {
		metrics.GuardContention.Inc()
		s.logger.Debug("recompute in progress, serving stored size", zap.Int64("site_id", int64(id)))
		if record == nil {
			return domain.Size{}, domain.ErrRecomputeInProgress
		}
		return record.Size, nil
	}
	defer s.release(ctx, id)

	return s.recompute(ctx, id)
}

// Refresh recomputes a site's size and writes it through both caches.
// The guard is taken when free so concurrent lookups back off, but a held
// guard does not block the refresh.
func (s *Service) Refresh(ctx context.Context, id domain.TenantID) (domain.Size, error) {
	acquired, err := s.guard.TryAcquire(ctx, id)
	if err != nil {
		s.logger.Warn("failed to acquire recompute guard for refresh",
			zap.Int64("site_id", int64(id)),
			zap.Error(err))
	}
	if acquired {
		defer s.release(ctx, id)
	}

	return s.recompute(ctx, id)
}

// Report returns the usage report of a site
func (s *Service) Report(ctx context.Context, id domain.TenantID, force bool) (domain.UsageReport, error) {
	size, err := s.GetSize(ctx, id, force)
	if err != nil {
		return domain.UsageReport{}, err
	}

	tenant, err := s.tenants.GetTenant(ctx, id)
	if err != nil {
		return domain.UsageReport{}, fmt.Errorf("failed to read site %d: %w", id, err)
	}

	return domain.NewUsageReport(size, tenant.AllowedBytes(s.config.DefaultQuota)), nil
}

// recompute runs the calculator and stores the result. The stored value
// includes error sizes; failures of the calculation itself are not cached.
func (s *Service) recompute(ctx context.Context, id domain.TenantID) (domain.Size, error) {
	start := s.now()
	size, err := s.calc.Compute(ctx, id)
	metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Recomputations.WithLabelValues("error").Inc()
		return domain.Size{}, fmt.Errorf("failed to compute size of site %d: %w", id, err)
	}
	metrics.Recomputations.WithLabelValues(size.Kind().String()).Inc()

	now := s.now()
	if err := s.records.PutSizeRecord(ctx, id, size, now); err != nil {
		s.logger.Error("failed to persist site size",
			zap.Int64("site_id", int64(id)),
			zap.Error(err))
	}

	if ttl, ok := MemoryTTL(s.config.MemoryDuration, 0, s.config.ListingViewTTL, IsListingView(ctx)); ok {
		s.mem.Set(id, size, ttl)
	} else {
		s.mem.Delete(id)
	}

	if bytes, ok := size.Bytes(); ok {
		metrics.LastComputedBytes.WithLabelValues(id.String()).Set(float64(bytes))
	}

	s.logger.Info("site size recomputed",
		zap.Int64("site_id", int64(id)),
		zap.Stringer("size", size),
		zap.Duration("elapsed", now.Sub(start)))
	return size, nil
}

// release clears the guard even when the request context is already done
func (s *Service) release(ctx context.Context, id domain.TenantID) {
	if err := s.guard.Release(context.WithoutCancel(ctx), id); err != nil {
		s.logger.Error("failed to release recompute guard",
			zap.Int64("site_id", int64(id)),
			zap.Error(err))
	}
}

// IsRecomputeInProgress reports whether err means another caller holds the guard
func IsRecomputeInProgress(err error) bool {
	return errors.Is(err, domain.ErrRecomputeInProgress)
}
