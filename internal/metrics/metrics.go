// Package metrics holds the Prometheus collectors the service exports
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Quote outcomes
const (
	OutcomeSuccess       = "success"
	OutcomeBadRequest    = "bad_request"
	OutcomeUnauthorized  = "unauthorized"
	OutcomeNoPricingRule = "no_pricing_rule"
	OutcomeError         = "error"
)

var (
	// QuotesTotal counts pricing lookups by outcome
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipquote_quotes_total",
			Help: "Pricing lookups by outcome",
		},
		[]string{"outcome"},
	)

	// HTTPRequestsTotal counts requests by route pattern and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipquote_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	// HTTPRequestDuration observes request latency by route pattern
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shipquote_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
