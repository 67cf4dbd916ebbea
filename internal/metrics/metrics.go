// Package metrics holds the Prometheus collectors for provider calls, the
// generation pipeline and the task runner. Collectors register on a
// package-local registry so /metrics only exposes what this service owns
// plus the Go runtime and process collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scry"

var (
	// Registry is the service's metrics registry.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// ProviderAttempts counts provider HTTP attempts by outcome.
	ProviderAttempts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Total number of provider chat attempts, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	// ProviderAttemptDuration observes the latency of each provider attempt.
	ProviderAttemptDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_attempt_duration_seconds",
			Help:      "Latency of individual provider chat attempts.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
	)

	// GenerationsStarted counts accepted generation requests.
	GenerationsStarted = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_started_total",
			Help:      "Total number of generation requests accepted.",
		},
	)

	// GenerationsCompleted counts generations that produced flashcards.
	GenerationsCompleted = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_completed_total",
			Help:      "Total number of generations that completed successfully.",
		},
	)

	// GenerationsFailed counts generations marked failed, by error category.
	GenerationsFailed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_failed_total",
			Help:      "Total number of generations marked failed, partitioned by error category.",
		},
		[]string{"category"},
	)

	// FlashcardsGenerated counts persisted AI proposals.
	FlashcardsGenerated = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flashcards_generated_total",
			Help:      "Total number of AI flashcard proposals persisted.",
		},
	)

	// TokensUsed counts provider tokens reported on successful calls.
	TokensUsed = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_tokens_used_total",
			Help:      "Total number of tokens reported by the provider.",
		},
	)

	// TaskQueueDepth tracks tasks waiting for a worker.
	TaskQueueDepth = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "task_queue_depth",
			Help:      "Number of background tasks waiting for a worker.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
