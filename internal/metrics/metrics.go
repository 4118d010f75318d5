// Package metrics holds the process's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_api_requests_total",
		Help: "REST API calls by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
	APIDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chirp_api_request_duration_seconds",
		Help:    "REST API call duration seconds, retries included",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_api_retries_total",
		Help: "REST API retry attempts",
	}, []string{"endpoint"})
	BreakerState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chirp_api_breaker_state",
		Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
	})

	OptimisticReactions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_optimistic_reactions_total",
		Help: "Reactions applied locally before the server confirmed them",
	}, []string{"reaction"})
	ReactionRollbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chirp_reaction_rollbacks_total",
		Help: "Optimistic reactions restored after the server call failed",
	})
	StaleResponses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chirp_stale_responses_total",
		Help: "Detail responses dropped because the viewer had navigated away",
	})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_http_requests_total",
		Help: "Handled browser requests by route and status class",
	}, []string{"route", "class"})
)

func init() {
	prometheus.MustRegister(
		APIRequests, APIDuration, APIRetries, BreakerState,
		OptimisticReactions, ReactionRollbacks, StaleResponses,
		HTTPRequests,
	)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAPICall records one finished API call.
func ObserveAPICall(endpoint, outcome string, start time.Time) {
	APIRequests.WithLabelValues(endpoint, outcome).Inc()
	APIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }

// StatusClass maps an HTTP status to "2xx", "3xx", "4xx" or "5xx".
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
