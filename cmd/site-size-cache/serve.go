package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vertextoedge/site-size-cache/internal/domain"
	"github.com/vertextoedge/site-size-cache/internal/service/maintenance"
	"github.com/vertextoedge/site-size-cache/internal/service/server"
	"github.com/vertextoedge/site-size-cache/internal/util/ratelimiter"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the size API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.logger
	log.Info("starting site-size-cache",
		zap.String("version", version),
		zap.String("config", cfgFile))

	a.mem.Start()
	defer a.mem.Stop()

	limiter := ratelimiter.New[domain.TenantID](a.cfg.HTTP.GetRefreshInterval())

	maintenanceService := maintenance.New(&maintenance.Config{
		GuardCheckInterval: a.cfg.Maintenance.GetGuardCheckInterval(),
		GuardLease:         a.cfg.Cache.GetGuardLease(),
		PruneInterval:      a.cfg.Maintenance.GetPruneInterval(),
	}, a.store, log.Named("maintenance"), limiter)

	httpServer := server.New(&server.Config{
		BindAddr:       a.cfg.HTTP.BindAddr,
		AdminUsername:  a.cfg.HTTP.AdminUsername,
		AdminPassword:  a.cfg.HTTP.AdminPassword,
		ViewerUsername: a.cfg.HTTP.ViewerUsername,
		ViewerPassword: a.cfg.HTTP.ViewerPassword,
		ReadTimeout:    a.cfg.HTTP.GetReadTimeout(),
		WriteTimeout:   a.cfg.HTTP.GetWriteTimeout(),
		IdleTimeout:    a.cfg.HTTP.GetIdleTimeout(),
	}, a.store, a.sizes, limiter, log.Named("http"))
	if a.cfg.Local.UploadsDir != "" {
		httpServer.SetDiskReporter(a.disk)
	}

	if a.cfg.HTTP.AdminPassword == "" {
		log.Warn("http.admin_password is empty, admin endpoints are disabled")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	go func() {
		if err := maintenanceService.Start(ctx); err != nil && err != context.Canceled {
			log.Error("maintenance service stopped with error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Info("application started successfully",
		zap.String("http_addr", a.cfg.HTTP.BindAddr),
		zap.String("bucket", a.cfg.ObjectStore.Bucket))

	var runErr error
	select {
	case <-sigChan:
		log.Info("shutdown signal received, stopping services...")
	case runErr = <-serverErr:
		if runErr != nil {
			log.Error("HTTP server failed", zap.Error(runErr))
		}
	}

	cancel()
	maintenanceService.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Stop(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", zap.Error(err))
	}

	log.Info("application stopped successfully")
	return runErr
}
