package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Refresh metrics
	RefreshCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cotizaya_refresh_cycles_total",
			Help: "Total completed refresh cycles",
		})
	RefreshDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cotizaya_refresh_dropped_total",
			Help: "Refresh requests dropped because one was in flight",
		})
	RefreshLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cotizaya_refresh_latency_seconds",
			Help:    "Time to complete one refresh cycle",
			Buckets: prometheus.DefBuckets,
		})

	// Source metrics
	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cotizaya_source_failures_total",
			Help: "Failed quote source requests",
		},
		[]string{"source"},
	)
	FallbackUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cotizaya_fallback_used_total",
			Help: "Currencies served from the static default table",
		},
		[]string{"currency"},
	)

	// News metrics
	NewsItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cotizaya_news_items",
			Help: "Headlines in the latest merged news list",
		})
	FeedFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cotizaya_feed_failures_total",
			Help: "Feeds that failed every fetch strategy",
		},
		[]string{"feed"},
	)
	FeedStrategyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cotizaya_feed_strategy_failures_total",
			Help: "Failed feed fetch attempts per strategy",
		},
		[]string{"strategy"},
	)

	// API metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
	APIRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "status"},
	)
)
