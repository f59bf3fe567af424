package sqlite

import (
	"context"
	"time"

	"github.com/vertextoedge/site-size-cache/internal/domain"
)

// AcquireGuard sets the recompute flag for a site in a single statement.
// The conditional upsert makes check-and-set atomic, so two callers can
// never both observe the flag as free.
func (s *Store) AcquireGuard(ctx context.Context, id domain.TenantID, now, takeoverBefore time.Time) (bool, error) {
	query := `
		INSERT INTO recompute_guards (site_id, acquired_at)
		VALUES (?, ?)
		ON CONFLICT(site_id) DO UPDATE SET
			acquired_at = excluded.acquired_at
		WHERE recompute_guards.acquired_at < ?
	`

	// Zero takeoverBefore compares below every stored value
	var cutoff int64
	if !takeoverBefore.IsZero() {
		cutoff = takeoverBefore.UnixNano()
	}

	result, err := s.db.ExecContext(ctx, query, int64(id), now.UnixNano(), cutoff)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ReleaseGuard clears the recompute flag for a site
func (s *Store) ReleaseGuard(ctx context.Context, id domain.TenantID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM recompute_guards WHERE site_id = ?", int64(id))
	return err
}

// IsGuardHeld reports whether the recompute flag is set for a site
func (s *Store) IsGuardHeld(ctx context.Context, id domain.TenantID) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM recompute_guards WHERE site_id = ?", int64(id)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReleaseExpiredGuards clears flags set before cutoff
func (s *Store) ReleaseExpiredGuards(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM recompute_guards WHERE acquired_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
