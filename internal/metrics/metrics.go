package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "musicbot",
		Name:      "commands_total",
		Help:      "Total chat commands handled, by command kind.",
	}, []string{"command"})

	AdmissionDeniedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "musicbot",
		Name:      "admission_denied_total",
		Help:      "Total requests rejected by the per-requester rate limiter.",
	})

	ProviderSearchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "musicbot",
		Name:      "provider_search_total",
		Help:      "Total provider search calls by provider name and result status.",
	}, []string{"provider", "status"})

	ProviderSearchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "musicbot",
		Name:      "provider_search_duration_seconds",
		Help:      "Provider search call duration in seconds.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"provider"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "musicbot",
		Name:      "cache_hits_total",
		Help:      "Total number of search cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "musicbot",
		Name:      "cache_misses_total",
		Help:      "Total number of search cache misses.",
	})

	FetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "musicbot",
		Name:      "fetch_total",
		Help:      "Total track fetch attempts by outcome.",
	}, []string{"status"})

	FetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "musicbot",
		Name:      "fetch_duration_seconds",
		Help:      "Track fetch duration in seconds.",
		Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
	})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "musicbot",
		Name:      "active_sessions",
		Help:      "Number of chats with a live selection session.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		CommandsTotal,
		AdmissionDeniedTotal,
		ProviderSearchTotal,
		ProviderSearchDuration,
		CacheHitsTotal,
		CacheMissesTotal,
		FetchTotal,
		FetchDuration,
		ActiveSessions,
	)
}
