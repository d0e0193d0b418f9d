package observability

import (
	"context"
	"testing"
	"time"
)

func TestSearchMetricsNilSafe(t *testing.T) {
	var m *SearchMetrics
	ctx := context.Background()

	m.ObserveDuration(ctx, time.Millisecond)
	m.AddResults(ctx, "patients", 2)
	m.Degraded(ctx, "events")
}

func TestSearchMetricsNoopProvider(t *testing.T) {
	m := NewSearchMetrics()
	ctx := context.Background()

	m.ObserveDuration(ctx, 3*time.Millisecond)
	m.AddResults(ctx, "patients", 1)
	m.AddResults(ctx, "pages", 0)
	m.Degraded(ctx, "events")
}
