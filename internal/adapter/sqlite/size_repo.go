package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vertextoedge/site-size-cache/internal/domain"
)

// GetSizeRecord retrieves the cached size of a site
func (s *Store) GetSizeRecord(ctx context.Context, id domain.TenantID) (*domain.SizeRecord, error) {
	query := `
		SELECT site_id, site_size, last_update
		FROM site_sizes
		WHERE site_id = ?
	`

	var siteID, size int64
	var lastUpdate time.Time

	err := s.db.QueryRowContext(ctx, query, int64(id)).Scan(&siteID, &size, &lastUpdate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.SizeRecord{
		TenantID:   domain.TenantID(siteID),
		Size:       domain.DecodeSize(size),
		LastUpdate: lastUpdate,
	}, nil
}

// PutSizeRecord upserts the size of a site
func (s *Store) PutSizeRecord(ctx context.Context, id domain.TenantID, size domain.Size, now time.Time) error {
	query := `
		INSERT INTO site_sizes (site_id, site_size, last_update)
		VALUES (?, ?, ?)
		ON CONFLICT(site_id) DO UPDATE SET
			site_size = excluded.site_size,
			last_update = excluded.last_update
	`

	_, err := s.db.ExecContext(ctx, query, int64(id), size.Encode(), now.UTC())
	return err
}
