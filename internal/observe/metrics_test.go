package observe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fennwald/loreweave/internal/observe"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*observe.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestRecordStage(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordStage(context.Background(), "graph_retrieval", 120*time.Millisecond)
	m.RecordStage(context.Background(), "call_llm", 2*time.Second)

	rm := collect(t, reader)
	metric, ok := findMetric(rm, "loreweave.stage.duration")
	if !ok {
		t.Fatal("loreweave.stage.duration was not recorded")
	}
	hist, ok := metric.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("data is %T, want float64 histogram", metric.Data)
	}
	if len(hist.DataPoints) != 2 {
		t.Errorf("got %d data points, want one per stage attribute", len(hist.DataPoints))
	}
}

func TestCounters(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordTurn(context.Background(), "npc_aldric")
	m.RecordTurn(context.Background(), "npc_aldric")
	m.RecordRouterFallback(context.Background(), "query")
	m.RecordBackendError(context.Background(), "anyllm")

	rm := collect(t, reader)

	turns, ok := findMetric(rm, "loreweave.turns")
	if !ok {
		t.Fatal("loreweave.turns was not recorded")
	}
	sum, ok := turns.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("data is %T, want int64 sum", turns.Data)
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 2 {
		t.Errorf("turns = %+v, want a single data point of 2", sum.DataPoints)
	}

	if _, ok := findMetric(rm, "loreweave.router.fallbacks"); !ok {
		t.Error("loreweave.router.fallbacks was not recorded")
	}
	if _, ok := findMetric(rm, "loreweave.backend.errors"); !ok {
		t.Error("loreweave.backend.errors was not recorded")
	}
}

func TestMiddleware(t *testing.T) {
	m, reader := newTestMetrics(t)

	handler := observe.Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTeapot)
	}

	rm := collect(t, reader)
	if _, ok := findMetric(rm, "loreweave.http.request.duration"); !ok {
		t.Error("loreweave.http.request.duration was not recorded")
	}
}
