package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/site-size-cache/internal/metrics"
	"github.com/vertextoedge/site-size-cache/internal/port"
)

// Pruner drops state that is no longer needed
type Pruner interface {
	Prune() int
}

// Config contains maintenance service configuration
type Config struct {
	// GuardCheckInterval is how often to sweep expired recompute guards
	GuardCheckInterval time.Duration

	// GuardLease is how long a recompute guard may be held before it is swept
	GuardLease time.Duration

	// PruneInterval is how often to prune in-memory throttling state
	PruneInterval time.Duration
}

// DefaultConfig returns default maintenance configuration
func DefaultConfig() *Config {
	return &Config{
		GuardCheckInterval: time.Minute,
		GuardLease:         10 * time.Minute,
		PruneInterval:      10 * time.Minute,
	}
}

// Service handles periodic maintenance tasks
type Service struct {
	config  *Config
	guards  port.GuardRepository
	pruners []Pruner
	logger  *zap.Logger

	now func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new maintenance Service
func New(cfg *Config, guards port.GuardRepository, logger *zap.Logger, pruners ...Pruner) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.GuardCheckInterval == 0 {
		cfg.GuardCheckInterval = time.Minute
	}
	if cfg.GuardLease == 0 {
		cfg.GuardLease = 10 * time.Minute
	}
	if cfg.PruneInterval == 0 {
		cfg.PruneInterval = 10 * time.Minute
	}

	return &Service{
		config:  cfg,
		guards:  guards,
		pruners: pruners,
		logger:  logger,
		now:     time.Now,
	}
}

// Start starts the maintenance service and blocks until ctx is done or Stop is called
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("maintenance service already running")
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("maintenance service started",
		zap.Duration("guard_check_interval", s.config.GuardCheckInterval),
		zap.Duration("guard_lease", s.config.GuardLease))

	s.wg.Add(1)
	go s.maintenanceLoop(ctx)

	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("maintenance service stopped")
	return nil
}

// Stop stops the maintenance service
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
}

func (s *Service) maintenanceLoop(ctx context.Context) {
	defer s.wg.Done()

	guardTicker := time.NewTicker(s.config.GuardCheckInterval)
	defer guardTicker.Stop()

	pruneTicker := time.NewTicker(s.config.PruneInterval)
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-guardTicker.C:
			s.releaseExpiredGuards(ctx)
		case <-pruneTicker.C:
			s.prune()
		}
	}
}

// releaseExpiredGuards clears guards whose holder outlived the lease,
// which only happens when a recomputation crashed or hung
func (s *Service) releaseExpiredGuards(ctx context.Context) {
	cutoff := s.now().Add(-s.config.GuardLease)
	released, err := s.guards.ReleaseExpiredGuards(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to release expired recompute guards", zap.Error(err))
	} else if released > 0 {
		metrics.GuardsReleased.Add(float64(released))
		s.logger.Warn("released expired recompute guards", zap.Int("count", released))
	}
}

func (s *Service) prune() {
	for _, p := range s.pruners {
		if n := p.Prune(); n > 0 {
			s.logger.Debug("pruned throttle state", zap.Int("count", n))
		}
	}
}
