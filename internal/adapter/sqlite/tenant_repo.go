package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vertextoedge/site-size-cache/internal/domain"
)

// GetTenant retrieves a site by id
func (s *Store) GetTenant(ctx context.Context, id domain.TenantID) (*domain.Tenant, error) {
	query := `
		SELECT id, domain, quota_bytes, created_at
		FROM sites
		WHERE id = ?
	`
	return s.scanTenant(s.db.QueryRowContext(ctx, query, int64(id)))
}

// GetTenantByDomain retrieves a site by its domain (case-insensitive)
func (s *Store) GetTenantByDomain(ctx context.Context, domainName string) (*domain.Tenant, error) {
	query := `
		SELECT id, domain, quota_bytes, created_at
		FROM sites
		WHERE domain = ?
	`
	return s.scanTenant(s.db.QueryRowContext(ctx, query, strings.ToLower(domainName)))
}

// CreateTenant registers a site
func (s *Store) CreateTenant(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		INSERT INTO sites (id, domain, quota_bytes)
		VALUES (?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, int64(tenant.ID), strings.ToLower(tenant.Domain), tenant.QuotaBytes)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// ListTenants returns all sites ordered by id
func (s *Store) ListTenants(ctx context.Context) ([]*domain.Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, domain, quota_bytes, created_at
		FROM sites
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		t, err := s.scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanTenant(row rowScanner) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	var id int64
	var createdAt sql.NullTime

	err := row.Scan(&id, &t.Domain, &t.QuotaBytes, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t.ID = domain.TenantID(id)
	if createdAt.Valid {
		t.CreatedAt = createdAt.Time
	}
	return t, nil
}
