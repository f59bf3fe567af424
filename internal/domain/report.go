package domain

import (
	"math"

	"github.com/dustin/go-humanize"
)

// UsageReport is the read-only view of a site's storage use
type UsageReport struct {
	AllowedBytes int64  `json:"allowed_bytes"`
	UsedBytes    int64  `json:"used_bytes"`
	UsedPercent  int64  `json:"used_percent"`
	UsedReadable string `json:"used_readable"`
	Status       string `json:"status"`
}

// NewUsageReport builds a report from a size and the site's quota.
// Sentinel sizes are reported with their raw value, zero percent and the
// failure kind as the readable text.
func NewUsageReport(size Size, allowedBytes int64) UsageReport {
	report := UsageReport{
		AllowedBytes: allowedBytes,
		UsedBytes:    size.Encode(),
		Status:       size.Kind().String(),
	}

	used, ok := size.Bytes()
	if !ok {
		report.UsedReadable = size.Kind().String()
		return report
	}

	report.UsedReadable = humanize.IBytes(uint64(used))
	if allowedBytes > 0 {
		report.UsedPercent = int64(math.Round(float64(used) / float64(allowedBytes) * 100))
	}
	return report
}
