package repository

import (
	"context"

	"github.com/vertextoedge/site-size-cache/internal/domain"
)

// TenantRepository is the network's site directory
type TenantRepository interface {
	// GetTenant retrieves a site by id
	// Returns nil, nil if the site does not exist
	GetTenant(ctx context.Context, id domain.TenantID) (*domain.Tenant, error)

	// GetTenantByDomain retrieves a site by its domain
	// Returns nil, nil if no site uses the domain
	GetTenantByDomain(ctx context.Context, domainName string) (*domain.Tenant, error)

	// CreateTenant registers a site
	// Returns domain.ErrAlreadyExists if the id or domain is taken
	CreateTenant(ctx context.Context, tenant *domain.Tenant) error

	// ListTenants returns all sites ordered by id
	ListTenants(ctx context.Context) ([]*domain.Tenant, error)
}
