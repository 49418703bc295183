package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRuns counts sync pipeline runs by terminal outcome
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gowatcharr_sync_runs_total",
		Help: "Number of sync runs by outcome.",
	}, []string{"outcome"})

	// ItemsSynced counts items written by the persist stage
	ItemsSynced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gowatcharr_items_synced_total",
		Help: "Number of library items written by sync runs.",
	})

	// ItemsEnriched counts items that gained primary metadata
	ItemsEnriched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gowatcharr_items_enriched_total",
		Help: "Number of items enriched with primary metadata.",
	})

	// EnrichmentFailures counts swallowed per-item enrichment failures
	EnrichmentFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gowatcharr_enrichment_failures_total",
		Help: "Number of per-item enrichment failures (recovered).",
	})

	// HTTPRequests counts requests by path and status code
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gowatcharr_http_requests_total",
		Help: "Number of HTTP requests by path and status.",
	}, []string{"path", "status"})

	// HTTPDuration observes request latency by path
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gowatcharr_http_request_duration_seconds",
		Help:    "HTTP request latency by path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)
