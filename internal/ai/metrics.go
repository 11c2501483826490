package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "school_assistant_invocations_total",
			Help: "Model invocations by capability and outcome",
		},
		[]string{"capability", "outcome"},
	)

	invocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "school_assistant_invocation_duration_seconds",
			Help:    "Wall time of model invocations",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		},
		[]string{"capability"},
	)
)
