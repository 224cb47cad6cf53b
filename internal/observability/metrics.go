package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec
	gradedAnswersTotal *prometheus.CounterVec
	badgeAwardsTotal   *prometheus.CounterVec
	badgeFailuresTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mea_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mea_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mea_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		gradedAnswersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mea_graded_answers_total",
			Help: "Answers graded, by entry point and feedback tier.",
		}, []string{"mode", "tier"})

		badgeAwardsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mea_badge_awards_total",
			Help: "Badges awarded, by criteria.",
		}, []string{"criteria"})

		badgeFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mea_badge_evaluation_failures_total",
			Help: "Badge evaluation steps that failed, by stage.",
		}, []string{"stage"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, httpErrorsTotal, gradedAnswersTotal, badgeAwardsTotal, badgeFailuresTotal)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// GradedAnswers exposes the counter of graded answers.
func GradedAnswers() *prometheus.CounterVec {
	RegisterMetrics()
	return gradedAnswersTotal
}

// BadgeAwards exposes the counter of awarded badges.
func BadgeAwards() *prometheus.CounterVec {
	RegisterMetrics()
	return badgeAwardsTotal
}

// BadgeFailures exposes the counter of badge evaluation failures.
func BadgeFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return badgeFailuresTotal
}
