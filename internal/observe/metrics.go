// Package observe provides observability primitives for loreweave:
// OpenTelemetry metrics, tracing, structured logging, and HTTP middleware
// tying them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so metrics can be scraped
// from the standard /metrics endpoint. A package-level default [Metrics]
// instance ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with their own [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all loreweave metrics.
const meterName = "github.com/fennwald/loreweave"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// StageDuration tracks per-pipeline-stage latency. Use with attribute:
	//   attribute.String("stage", ...)
	StageDuration metric.Float64Histogram

	// LLMDuration tracks generative backend call latency. Use with attribute:
	//   attribute.String("purpose", "routing"|"generation")
	LLMDuration metric.Float64Histogram

	// Turns counts completed dialogue turns. Use with attribute:
	//   attribute.String("npc_id", ...)
	Turns metric.Int64Counter

	// RouterFallbacks counts routing calls that exhausted their retry and
	// fell back. Use with attribute: attribute.String("router", "query"|"graph")
	RouterFallbacks metric.Int64Counter

	// RetrievalHits counts fused retrieval hits returned per pass. Use with
	// attribute: attribute.String("pass", "semantic"|"entity"|"neighbor"|"fused")
	RetrievalHits metric.Int64Counter

	// BackendErrors counts generative backend and index failures. Use with
	// attribute: attribute.String("backend", ...)
	BackendErrors metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries in seconds, sized for
// LLM-bound pipeline stages.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StageDuration, err = m.Float64Histogram("loreweave.stage.duration",
		metric.WithDescription("Latency of one pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMDuration, err = m.Float64Histogram("loreweave.llm.duration",
		metric.WithDescription("Latency of generative backend calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Turns, err = m.Int64Counter("loreweave.turns",
		metric.WithDescription("Completed dialogue turns by NPC ID."),
	); err != nil {
		return nil, err
	}
	if met.RouterFallbacks, err = m.Int64Counter("loreweave.router.fallbacks",
		metric.WithDescription("Routing calls that fell back after a failed retry."),
	); err != nil {
		return nil, err
	}
	if met.RetrievalHits, err = m.Int64Counter("loreweave.retrieval.hits",
		metric.WithDescription("Retrieval hits by pass."),
	); err != nil {
		return nil, err
	}
	if met.BackendErrors, err = m.Int64Counter("loreweave.backend.errors",
		metric.WithDescription("Generative backend and index failures."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("loreweave.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call from [otel.GetMeterProvider]. Panics if instrument creation
// fails, which can not happen with the global provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordStage records one pipeline stage completion.
func (m *Metrics) RecordStage(ctx context.Context, stage string, d time.Duration) {
	m.StageDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordTurn records one completed dialogue turn.
func (m *Metrics) RecordTurn(ctx context.Context, npcID string) {
	m.Turns.Add(ctx, 1,
		metric.WithAttributes(attribute.String("npc_id", npcID)),
	)
}

// RecordRouterFallback records a routing call that returned its fallback.
func (m *Metrics) RecordRouterFallback(ctx context.Context, router string) {
	m.RouterFallbacks.Add(ctx, 1,
		metric.WithAttributes(attribute.String("router", router)),
	)
}

// RecordBackendError records a generative backend or index failure.
func (m *Metrics) RecordBackendError(ctx context.Context, backend string) {
	m.BackendErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("backend", backend)),
	)
}
