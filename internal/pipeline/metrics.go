package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	providerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardgend",
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Provider completion attempts by outcome",
		},
		[]string{"outcome"},
	)

	providerRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cardgend",
			Subsystem: "provider",
			Name:      "retries_total",
			Help:      "Retried provider attempts after rate-limit responses",
		},
	)

	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardgend",
			Subsystem: "pipeline",
			Name:      "generations_total",
			Help:      "Pipeline executions by result",
		},
		[]string{"result"},
	)

	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cardgend",
			Subsystem: "pipeline",
			Name:      "generation_duration_seconds",
			Help:      "End-to-end duration of successful generations",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(providerRequestsTotal, providerRetriesTotal, generationsTotal, generationDuration)
}
