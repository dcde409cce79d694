package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestDispatch_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prevProvider := otel.GetMeterProvider()
	prevOnce := instrumentsOnce
	otel.SetMeterProvider(provider)
	instrumentsOnce = sync.Once{}
	t.Cleanup(func() {
		otel.SetMeterProvider(prevProvider)
		instrumentsOnce = prevOnce
	})

	d := newDispatcher(t, &stubTransport{resp: &Response{StatusCode: 200}})
	if _, err := d.Dispatch(context.Background(), NewRequestOptions("GET", "https://example.test")); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	var data metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &data); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	seen := map[string]bool{}
	for _, sm := range data.ScopeMetrics {
		for _, m := range sm.Metrics {
			seen[m.Name] = true
		}
	}
	if !seen["pipeline.requests_total"] {
		t.Error("pipeline.requests_total was not recorded")
	}
	if !seen["pipeline.dispatch_duration_seconds"] {
		t.Error("pipeline.dispatch_duration_seconds was not recorded")
	}
}

func TestDispatch_StillFailsWhenTransportErrors(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, &stubTransport{err: errors.New("boom")})
	_, err := d.Dispatch(context.Background(), NewRequestOptions("GET", "https://example.test"))
	if err == nil {
		t.Fatal("Dispatch() error = nil, want failure")
	}
}
