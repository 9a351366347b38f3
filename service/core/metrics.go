package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftmon_http_requests_total",
			Help: "HTTP requests served, by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "driftmon_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	alertBreachesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftmon_alert_breaches_total",
			Help: "Alert evaluations that breached a threshold, by kind (td or te)",
		},
		[]string{"kind"},
	)

	pricesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftmon_prices_ingested_total",
			Help: "Price rows written by ingestion, by symbol",
		},
		[]string{"symbol"},
	)
)
