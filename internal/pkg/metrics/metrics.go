// Package metrics exposes the pipeline's Prometheus instrumentation.
// Collectors are registered on the default registry and served by the
// HTTP transport on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackendRequests counts completion calls per backend and outcome
	// (ok, unavailable, rejected).
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storycrafter_backend_requests_total",
		Help: "Generative backend completion calls by backend and outcome.",
	}, []string{"backend", "outcome"})

	// Generations counts pipeline operations per outcome.
	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storycrafter_generations_total",
		Help: "Pipeline operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// GenerationDuration observes wall time per pipeline operation.
	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storycrafter_generation_duration_seconds",
		Help:    "Wall time of pipeline operations.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"operation"})

	// StoriesBelowMinimum counts stories whose acceptance criteria failed
	// the minimum quality bar during assembly.
	StoriesBelowMinimum = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storycrafter_stories_below_minimum_total",
		Help: "Stories that failed the acceptance-criteria quality minimum.",
	})
)

// Outcome labels.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
	OutcomeError       = "error"
)
