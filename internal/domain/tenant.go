package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TenantID identifies a site within the network
type TenantID int64

// PrimaryTenantID is the network's root site. Its uploads live at the
// bucket's uploads prefix instead of under the child sites prefix.
const PrimaryTenantID TenantID = 1

// MaxTenantInputLength bounds site identifiers accepted from outside (FQDN limit)
const MaxTenantInputLength = 255

// IsPrimary returns true if this is the network's root site
func (id TenantID) IsPrimary() bool {
	return id == PrimaryTenantID
}

// String returns the decimal representation used in object keys and paths
func (id TenantID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseTenantID parses a decimal site id. Only positive ids are valid.
func ParseTenantID(s string) (TenantID, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: site id %q is not numeric", ErrInvalidInput, s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: site id must be positive, got %d", ErrInvalidInput, n)
	}
	return TenantID(n), nil
}

// Tenant represents a site registered in the network directory
type Tenant struct {
	ID         TenantID
	Domain     string
	QuotaBytes int64 // 0 means the network default applies
	CreatedAt  time.Time
}

// AllowedBytes returns the site's quota, falling back to defaultQuota
func (t *Tenant) AllowedBytes(defaultQuota int64) int64 {
	if t == nil || t.QuotaBytes <= 0 {
		return defaultQuota
	}
	return t.QuotaBytes
}
