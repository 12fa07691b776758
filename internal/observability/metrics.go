package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "easyrent", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "easyrent",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	GeoLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "easyrent", Name: "geo_lookups_total", Help: "Geocoding and directions lookups by kind and outcome"},
		[]string{"kind", "outcome"},
	)
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "easyrent", Name: "quotes_total", Help: "Price calculations by outcome"},
		[]string{"outcome"},
	)
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "easyrent", Name: "bookings_total", Help: "Booking submissions by outcome"},
		[]string{"outcome"},
	)
	CaptchaChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "easyrent", Name: "captcha_checks_total", Help: "Driver form submissions by outcome"},
		[]string{"outcome"},
	)
)
