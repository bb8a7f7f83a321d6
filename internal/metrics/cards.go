package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Card search and ingestion Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardex",
			Name:      "search_requests_total",
			Help:      "Total number of card searches",
		},
		[]string{"mode", "outcome"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cardex",
			Name:      "search_duration_seconds",
			Help:      "Card search duration in seconds, storage included",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	PageCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardex",
			Name:      "page_cache_total",
			Help:      "Result page cache lookups",
		},
		[]string{"result"}, // "hit" / "miss" / "bypass"
	)

	CardCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardex",
			Name:      "card_cache_total",
			Help:      "In-process card lookup cache hits and misses",
		},
		[]string{"result"},
	)

	IngestCardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardex",
			Name:      "ingest_cards_total",
			Help:      "Cards processed by ingestion jobs",
		},
		[]string{"result"}, // "inserted" / "skipped" / "invalid"
	)

	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardex",
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the upstream card API",
		},
		[]string{"status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cardex",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream card API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

var registerOnce sync.Once

// RegisterCardMetrics registers HTTP, search, cache, ingestion and upstream
// metrics on the default registry. Repeated calls are no-ops.
func RegisterCardMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestsInFlight,
			SearchRequestsTotal,
			SearchDuration,
			PageCacheTotal,
			CardCacheTotal,
			IngestCardsTotal,
			UpstreamRequestsTotal,
			UpstreamRequestDuration,
		)
	})
}
