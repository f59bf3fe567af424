package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache tiers
const (
	TierMemory     = "memory"
	TierPersistent = "persistent"
)

// Lookup results
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultStale = "stale"
)

var (
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "site_size_cache_lookups_total",
		Help: "Size lookups by cache tier and result",
	}, []string{"tier", "result"})

	// Recomputations is labelled by the resulting size kind, or "error"
	Recomputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "site_size_recomputations_total",
		Help: "Completed site size recomputations by outcome",
	}, []string{"result"})

	RecomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "site_size_recompute_duration_seconds",
		Help:    "Time spent recomputing a site size",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	GuardContention = promauto.NewCounter(prometheus.CounterOpts{
		Name: "site_size_guard_contention_total",
		Help: "Lookups that found another recomputation in flight and served the stored value",
	})

	GuardsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "site_size_guards_expired_total",
		Help: "Recompute guards cleared by the maintenance sweep after their lease ran out",
	})

	// LastComputedBytes holds the most recent successful size of each site
	LastComputedBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "site_size_bytes",
		Help: "Most recently computed size in bytes for each site",
	}, []string{"site_id"})
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "site_size_http_requests_total",
		Help: "HTTP requests by route pattern and status code",
	}, []string{"route", "code"})

	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "site_size_auth_failures_total",
		Help: "Requests rejected for invalid basic auth credentials",
	})
)
