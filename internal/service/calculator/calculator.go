package calculator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/vertextoedge/site-size-cache/internal/domain"
	"github.com/vertextoedge/site-size-cache/internal/port"
	"github.com/vertextoedge/site-size-cache/internal/service/aggregator"
)

const delimiter = "/"

// Config contains size calculator configuration
type Config struct {
	// UploadsPrefix is the bucket prefix holding the primary site's uploads
	UploadsPrefix string

	// ChildSitesPrefix is the prefix below UploadsPrefix holding one prefix per child site
	ChildSitesPrefix string

	// UploadsDir is the local uploads directory of the primary site
	UploadsDir string

	// ChildSitesDir is the directory below UploadsDir holding one directory per child site
	ChildSitesDir string
}

// Calculator computes the storage footprint of a site from local disk and the object store
type Calculator struct {
	cfg      Config
	provider port.ObjectListerProvider
	disk     port.DirSizer
	logger   *zap.Logger
}

// New creates a new Calculator
func New(cfg Config, provider port.ObjectListerProvider, disk port.DirSizer, logger *zap.Logger) *Calculator {
	return &Calculator{
		cfg:      cfg,
		provider: provider,
		disk:     disk,
		logger:   logger,
	}
}

// Compute returns local plus object store bytes for a site.
// Object store failures are reported as error sizes; local disk errors and
// cancellation are returned as errors.
func (c *Calculator) Compute(ctx context.Context, id domain.TenantID) (domain.Size, error) {
	local, err := c.localSize(id)
	if err != nil {
		return domain.Size{}, err
	}

	lister, err := c.provider.Lister(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrObjectStoreUnavailable) {
			c.logger.Warn("object store unavailable",
				zap.Int64("site_id", int64(id)),
				zap.Error(err))
			return domain.ErrorSize(domain.SizeUnavailable), nil
		}
		return domain.Size{}, err
	}

	agg := aggregator.New(lister)
	var remote int64
	if id.IsPrimary() {
		remote, err = c.primaryRemote(ctx, agg)
	} else {
		remote, err = agg.Sum(ctx, c.ChildPrefix(id), "")
	}
	if err != nil {
		if errors.Is(err, domain.ErrObjectStore) {
			c.logger.Error("object store listing failed",
				zap.Int64("site_id", int64(id)),
				zap.String("message", err.Error()))
			return domain.ErrorSize(domain.SizeObjectStoreFailed), nil
		}
		return domain.Size{}, err
	}

	return domain.BytesSize(local + remote), nil
}

// UploadsRoot is the listing prefix of the primary site
func (c *Calculator) UploadsRoot() string {
	return JoinPrefix(c.cfg.UploadsPrefix)
}

// ChildrenRoot is the prefix grouping every child site
func (c *Calculator) ChildrenRoot() string {
	return JoinPrefix(c.cfg.UploadsPrefix, c.cfg.ChildSitesPrefix)
}

// ChildPrefix is the listing prefix of a child site
func (c *Calculator) ChildPrefix(id domain.TenantID) string {
	return JoinPrefix(c.cfg.UploadsPrefix, c.cfg.ChildSitesPrefix, id.String())
}

// primaryRemote sums the primary site's objects: direct contents of the
// uploads root plus every grouped prefix except the child sites tree.
func (c *Calculator) primaryRemote(ctx context.Context, agg *aggregator.Aggregator) (int64, error) {
	return c.sumExcluding(ctx, agg, c.UploadsRoot(), c.ChildrenRoot())
}

func (c *Calculator) sumExcluding(ctx context.Context, agg *aggregator.Aggregator, prefix, excluded string) (int64, error) {
	listing, err := agg.Walk(ctx, prefix, delimiter)
	if err != nil {
		return 0, err
	}

	total := listing.ContentBytes
	for _, cp := range listing.CommonPrefixes {
		var n int64
		switch {
		case cp == excluded:
			continue
		case strings.HasPrefix(excluded, cp):
			// child sites live deeper below this prefix
			n, err = c.sumExcluding(ctx, agg, cp, excluded)
		default:
			n, err = agg.Sum(ctx, cp, "")
		}
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (c *Calculator) localSize(id domain.TenantID) (int64, error) {
	if c.cfg.UploadsDir == "" {
		return 0, nil
	}

	childRoot := filepath.Join(c.cfg.UploadsDir, CleanSlashes(c.cfg.ChildSitesDir))

	var size int64
	var err error
	switch {
	case id.IsPrimary() && CleanSlashes(c.cfg.ChildSitesDir) == "":
		size, err = c.disk.SizeOf(c.cfg.UploadsDir)
	case id.IsPrimary():
		size, err = c.disk.SizeOf(c.cfg.UploadsDir, childRoot)
	default:
		size, err = c.disk.SizeOf(filepath.Join(childRoot, id.String()))
	}
	if err != nil {
		return 0, fmt.Errorf("local uploads of site %d: %w", id, err)
	}
	return size, nil
}

// CleanSlashes trims leading and trailing slashes from a path fragment
func CleanSlashes(s string) string {
	return strings.Trim(s, "/")
}

// JoinPrefix joins fragments into a listing prefix ending in a slash.
// Empty fragments are dropped; no fragments at all is the bucket root.
func JoinPrefix(fragments ...string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = CleanSlashes(f); f != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "/") + "/"
}
