package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vertextoedge/site-size-cache/internal/adapter/filesystem"
	"github.com/vertextoedge/site-size-cache/internal/adapter/memcache"
	"github.com/vertextoedge/site-size-cache/internal/adapter/s3store"
	"github.com/vertextoedge/site-size-cache/internal/adapter/sqlite"
	"github.com/vertextoedge/site-size-cache/internal/config"
	"github.com/vertextoedge/site-size-cache/internal/logger"
	"github.com/vertextoedge/site-size-cache/internal/service/calculator"
	"github.com/vertextoedge/site-size-cache/internal/service/guard"
	"github.com/vertextoedge/site-size-cache/internal/service/sizer"
)

// app holds the components shared by every command
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *sqlite.Store
	disk   *filesystem.Manager
	mem    *memcache.Cache
	guard  *guard.Guard
	sizes  *sizer.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := sqlite.OpenWithOptions(cfg.Database.Path, sqlite.Options{
		BusyTimeoutMs: cfg.Database.BusyTimeoutMs,
		CacheSizeMB:   cfg.Database.CacheSizeMB,
	})
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Database.Path, err)
	}

	defaultQuota, err := cfg.Sites.GetDefaultQuota()
	if err != nil {
		store.Close()
		return nil, err
	}

	provider := s3store.NewProvider(s3store.Config{
		Region:         cfg.ObjectStore.Region,
		Endpoint:       cfg.ObjectStore.Endpoint,
		AccessKey:      cfg.ObjectStore.AccessKey,
		SecretKey:      cfg.ObjectStore.AccessSecret,
		Bucket:         cfg.ObjectStore.Bucket,
		UsePathStyle:   cfg.ObjectStore.UsePathStyle,
		PageSize:       int32(cfg.ObjectStore.ListPageSize),
		RequestTimeout: cfg.ObjectStore.GetRequestTimeout(),
	}, log.Named("s3"))

	disk := filesystem.NewManager(cfg.Local.UploadsDir)
	calc := calculator.New(calculator.Config{
		UploadsPrefix:    cfg.ObjectStore.UploadsPrefix,
		ChildSitesPrefix: cfg.ObjectStore.ChildSitesPrefix,
		UploadsDir:       cfg.Local.UploadsDir,
		ChildSitesDir:    cfg.Local.ChildSitesDir,
	}, provider, disk, log.Named("calculator"))

	mem := memcache.New(uint64(max(cfg.Cache.MaxEntries, 0)))
	g := guard.New(store, cfg.Cache.GetGuardLease(), log.Named("guard"))

	sizes := sizer.New(&sizer.Config{
		Staleness:      cfg.Cache.GetPersistentStaleness(),
		MemoryDuration: cfg.Cache.GetMemoryDuration(),
		ListingViewTTL: cfg.Cache.GetListingViewTTL(),
		NetworkDomain:  cfg.Sites.NetworkDomain,
		DefaultQuota:   defaultQuota,
	}, store, store, mem, g, calc, log.Named("sizer"))

	return &app{
		cfg:    cfg,
		logger: log,
		store:  store,
		disk:   disk,
		mem:    mem,
		guard:  g,
		sizes:  sizes,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close database", zap.Error(err))
	}
	a.logger.Sync()
}
