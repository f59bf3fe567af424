package sizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/vertextoedge/site-size-cache/internal/domain"
)

// ResolveTenant maps an admin-supplied site reference to a site id.
// Accepted forms are a numeric id, a full domain, or a child slug that is
// resolved below the network domain. Empty input is the primary site.
func (s *Service) ResolveTenant(ctx context.Context, input string) (domain.TenantID, error) {
	input = strings.TrimSpace(input)
	if len(input) > domain.MaxTenantInputLength {
		return 0, fmt.Errorf("%w: site reference longer than %d characters", domain.ErrInvalidInput, domain.MaxTenantInputLength)
	}
	if input == "" {
		return domain.PrimaryTenantID, nil
	}

	if isNumeric(input) {
		id, err := domain.ParseTenantID(input)
		if err != nil {
			return 0, err
		}
		if id.IsPrimary() {
			return id, nil
		}
		tenant, err := s.tenants.GetTenant(ctx, id)
		if err != nil {
			return 0, err
		}
		if tenant == nil {
			return 0, fmt.Errorf("site %d: %w", id, domain.ErrNotFound)
		}
		return tenant.ID, nil
	}

	name := s.qualifyDomain(strings.ToLower(input))
	tenant, err := s.tenants.GetTenantByDomain(ctx, name)
	if err != nil {
		return 0, err
	}
	if tenant != nil {
		return tenant.ID, nil
	}
	if name == s.networkDomain() {
		return domain.PrimaryTenantID, nil
	}
	return 0, fmt.Errorf("site %q: %w", name, domain.ErrNotFound)
}

// qualifyDomain expands a child slug to "<slug>.<network domain>".
// Names already at or below the network domain are kept as given.
func (s *Service) qualifyDomain(name string) string {
	network := s.networkDomain()
	if network == "" || name == network || strings.HasSuffix(name, "."+network) {
		return name
	}
	return name + "." + network
}

func (s *Service) networkDomain() string {
	return strings.ToLower(strings.Trim(s.config.NetworkDomain, "."))
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
