package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tournament_http_requests_total", Help: "HTTP requests by route and status"},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "tournament_http_request_duration_seconds", Help: "HTTP request latency", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	Registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tournament_registrations_total", Help: "Team registration attempts by outcome"},
		[]string{"outcome"},
	)
	MatchResults = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "tournament_match_results_total", Help: "Match results recorded"},
	)
	EventPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "tournament_event_publish_failures_total", Help: "Domain events that failed to publish"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests, HTTPDuration, Registrations, MatchResults, EventPublishFailures)
}
