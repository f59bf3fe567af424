package port

// DirSizer reports the size of local upload directories
type DirSizer interface {
	// SizeOf returns the total size of regular files under path,
	// skipping the excluded directories. A missing path has size zero.
	SizeOf(path string, exclude ...string) (int64, error)
}

// DiskUsage describes the volume holding the local uploads
type DiskUsage struct {
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Free    uint64  `json:"free"`
	UsedPct float64 `json:"used_pct"`
}

// DiskReporter reports usage of the uploads volume
type DiskReporter interface {
	DiskUsage() (*DiskUsage, error)
}
