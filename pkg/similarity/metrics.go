package similarity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mea",
		Subsystem: "similarity",
		Name:      "request_duration_seconds",
		Help:      "Duration of similarity scoring requests",
	}, []string{"provider"})

	scoreFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mea",
		Subsystem: "similarity",
		Name:      "failures_total",
		Help:      "Number of similarity scoring failures",
	}, []string{"provider"})
)
