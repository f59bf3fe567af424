package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vertextoedge/site-size-cache/internal/domain"
	"github.com/vertextoedge/site-size-cache/internal/port"
)

// SizeService is the size query surface served over HTTP
type SizeService interface {
	GetSize(ctx context.Context, id domain.TenantID, force bool) (domain.Size, error)
	Refresh(ctx context.Context, id domain.TenantID) (domain.Size, error)
	Report(ctx context.Context, id domain.TenantID, force bool) (domain.UsageReport, error)
	ResolveTenant(ctx context.Context, input string) (domain.TenantID, error)
}

// RefreshLimiter throttles forced refreshes per site
type RefreshLimiter interface {
	Allow(key domain.TenantID) (bool, time.Duration)
}

// Config contains HTTP server configuration
type Config struct {
	BindAddr       string
	AdminUsername  string
	AdminPassword  string
	ViewerUsername string
	ViewerPassword string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		BindAddr:     "0.0.0.0:8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

// Server represents the HTTP API server
type Server struct {
	config       *Config
	store        port.Store
	logger       *zap.Logger
	server       *http.Server
	sizeHandler  *SizeHandler
	adminHandler *AdminHandler
	debugHandler *DebugHandler
}

// New creates a new HTTP server
func New(cfg *Config, store port.Store, sizes SizeService, limiter RefreshLimiter, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		config: cfg,
		store:  store,
		logger: logger,
	}

	s.sizeHandler = NewSizeHandler(sizes, logger)
	s.adminHandler = NewAdminHandler(sizes, limiter, logger)
	s.debugHandler = NewDebugHandler(store, logger)

	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Size queries
	viewerAuth := optionalAuth(cfg.ViewerUsername, cfg.ViewerPassword, logger)
	mux.HandleFunc("GET /api/v1/sites/{site}/size", viewerAuth(s.sizeHandler.HandleSize))
	mux.HandleFunc("GET /api/v1/sites/{site}/usage", viewerAuth(s.sizeHandler.HandleUsage))

	// Admin endpoints require credentials
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		adminAuth := BasicAuthMiddleware(cfg.AdminUsername, cfg.AdminPassword, logger)
		mux.HandleFunc("/admin/refresh", adminAuth(s.adminHandler.HandleRefresh))
		mux.HandleFunc("/debug/stats", adminAuth(s.debugHandler.HandleStats))
	}

	s.server = &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      LoggingMiddleware(logger)(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// SetDiskReporter adds uploads volume usage to the debug stats
func (s *Server) SetDiskReporter(disk port.DiskReporter) {
	s.debugHandler.disk = disk
}

// Handler returns the root handler, including middleware
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.store.Ping(); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		http.Error(w, "Database connection failed", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy","time":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func optionalAuth(username, password string, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	if username == "" && password == "" {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	return BasicAuthMiddleware(username, password, logger)
}
