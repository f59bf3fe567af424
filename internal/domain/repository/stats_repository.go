package repository

import (
	"context"

	"github.com/vertextoedge/site-size-cache/internal/domain"
)

// StatsRepository defines the interface for size cache statistics
type StatsRepository interface {
	// GetSizeStats returns size cache statistics
	GetSizeStats(ctx context.Context) (*domain.SizeStats, error)
}
