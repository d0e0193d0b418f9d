package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SearchMetrics records federated search latency and result volume.
type SearchMetrics struct {
	duration metric.Float64Histogram
	results  metric.Int64Counter
	degraded metric.Int64Counter
}

// NewSearchMetrics registers the search instruments on the global meter
// provider. Instrument errors leave no-op instruments in place.
func NewSearchMetrics() *SearchMetrics {
	meter := otel.Meter(tracerName)

	duration, _ := meter.Float64Histogram(
		"search_duration_ms",
		metric.WithDescription("Federated search duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	results, _ := meter.Int64Counter(
		"search_results_total",
		metric.WithDescription("Results returned by federated search, per group"),
		metric.WithUnit("{result}"),
	)
	degraded, _ := meter.Int64Counter(
		"search_degraded_collections_total",
		metric.WithDescription("Collections that failed to load and were searched as empty"),
	)

	return &SearchMetrics{duration: duration, results: results, degraded: degraded}
}

func (m *SearchMetrics) ObserveDuration(ctx context.Context, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Record(ctx, float64(d.Microseconds())/1000)
}

func (m *SearchMetrics) AddResults(ctx context.Context, group string, n int) {
	if m == nil || m.results == nil || n == 0 {
		return
	}
	m.results.Add(ctx, int64(n), metric.WithAttributes(attribute.String("group", group)))
}

func (m *SearchMetrics) Degraded(ctx context.Context, collection string) {
	if m == nil || m.degraded == nil {
		return
	}
	m.degraded.Add(ctx, 1, metric.WithAttributes(attribute.String("collection", collection)))
}
