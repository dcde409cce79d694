package pipeline

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// instrumentName is the OpenTelemetry instrumentation scope for every
// meter and tracer the pipeline package creates.
const instrumentName = "github.com/deepworx/go-httpclient/pkg/pipeline"

var (
	instrumentsOnce sync.Once
	requestsTotal   metric.Int64Counter
	dispatchSeconds metric.Float64Histogram
)

// instruments lazily creates the pipeline's metric instruments against
// whatever MeterProvider is registered at first use, so a Dispatcher built
// before otel.Setup runs still reports once a provider is installed.
func instruments() {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(instrumentName)

		var err error
		requestsTotal, err = meter.Int64Counter(
			"pipeline.requests_total",
			metric.WithDescription("Number of requests dispatched through the pipeline, by outcome."),
		)
		if err != nil {
			requestsTotal = noopCounter{}
		}

		dispatchSeconds, err = meter.Float64Histogram(
			"pipeline.dispatch_duration_seconds",
			metric.WithDescription("Time spent dispatching a request through the pipeline, including the transport round trip."),
			metric.WithUnit("s"),
		)
		if err != nil {
			dispatchSeconds = noopHistogram{}
		}
	})
}

func recordDispatch(ctx context.Context, method string, seconds float64, outcome string) {
	instruments()
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	)
	requestsTotal.Add(ctx, 1, attrs)
	dispatchSeconds.Record(ctx, seconds, attrs)
}

// noopCounter and noopHistogram satisfy metric.Int64Counter and
// metric.Float64Histogram's interfaces so a failed instrument creation
// degrades to discarding measurements instead of a nil-pointer panic.
type noopCounter struct{ metric.Int64Counter }
type noopHistogram struct{ metric.Float64Histogram }

func (noopCounter) Add(context.Context, int64, ...metric.AddOption) {}

func (noopHistogram) Record(context.Context, float64, ...metric.RecordOption) {}
