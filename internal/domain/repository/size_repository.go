package repository

import (
	"context"
	"time"

	"github.com/vertextoedge/site-size-cache/internal/domain"
)

// SizeRecordRepository defines the persistent size cache
type SizeRecordRepository interface {
	// GetSizeRecord retrieves the cached size of a site
	// Returns nil, nil if no record exists
	GetSizeRecord(ctx context.Context, id domain.TenantID) (*domain.SizeRecord, error)

	// PutSizeRecord upserts the size of a site with its attempt time
	// Sentinel sizes are stored like any other value
	PutSizeRecord(ctx context.Context, id domain.TenantID, size domain.Size, now time.Time) error
}
