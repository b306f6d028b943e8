// Package metrics provides Prometheus collectors for the chat service:
// HTTP traffic, model attempts and failovers, search fan-out, and the
// multi-agent pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	instance *Metrics
)

// Metrics holds all collectors for the service.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Chat turns and model attempts
	TurnsTotal         *prometheus.CounterVec   // outcome: success|failed
	ModelAttemptsTotal *prometheus.CounterVec   // model, outcome
	FailoversTotal     *prometheus.CounterVec   // from_model
	StreamDuration     *prometheus.HistogramVec // model

	// Rate limiting
	RateLimitedTotal prometheus.Counter

	// Web augmentation
	SearchProviderResults *prometheus.CounterVec // provider
	SearchProviderErrors  *prometheus.CounterVec // provider

	// Multi-agent pipeline
	AgentPhaseDuration *prometheus.HistogramVec // phase
	AgentRunsTotal     *prometheus.CounterVec   // outcome
}

// Get returns the process-wide metrics singleton.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rafiq_http_requests_total",
				Help: "HTTP requests by method, path and status",
			}, []string{"method", "path", "status"}),
			HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "rafiq_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "path"}),

			TurnsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rafiq_chat_turns_total",
				Help: "Completed chat turns by outcome",
			}, []string{"outcome"}),
			ModelAttemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rafiq_model_attempts_total",
				Help: "Model attempts by model id and outcome kind",
			}, []string{"model", "outcome"}),
			FailoversTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rafiq_model_failovers_total",
				Help: "Failovers away from a model",
			}, []string{"from_model"}),
			StreamDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "rafiq_stream_duration_seconds",
				Help:    "Wall-clock duration of streaming attempts",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			}, []string{"model"}),

			RateLimitedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "rafiq_rate_limited_total",
				Help: "Requests rejected by the local rate limiter",
			}),

			SearchProviderResults: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rafiq_search_provider_results_total",
				Help: "Results contributed per search provider",
			}, []string{"provider"}),
			SearchProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rafiq_search_provider_errors_total",
				Help: "Provider fetch failures (tolerated, partial results)",
			}, []string{"provider"}),

			AgentPhaseDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "rafiq_agent_phase_duration_seconds",
				Help:    "Duration of multi-agent pipeline phases",
				Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
			}, []string{"phase"}),
			AgentRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rafiq_agent_runs_total",
				Help: "Multi-agent project runs by outcome",
			}, []string{"outcome"}),
		}
	})
	return instance
}
