package domain

import "time"

// SizeRecord is the persisted size of a site and the time it was last attempted
type SizeRecord struct {
	TenantID   TenantID
	Size       Size
	LastUpdate time.Time
}

// Age returns how long ago the record was written
func (r *SizeRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.LastUpdate)
}

// IsStale returns true if the record is older than threshold
func (r *SizeRecord) IsStale(now time.Time, threshold time.Duration) bool {
	return r.Age(now) > threshold
}

// SizeStats summarizes the persisted size cache
type SizeStats struct {
	TrackedSites int64 `json:"tracked_sites"`
	ErroredSites int64 `json:"errored_sites"`
	TotalBytes   int64 `json:"total_bytes"`
	HeldGuards   int64 `json:"held_guards"`
}
