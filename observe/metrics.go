package observe

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type instruments struct {
	evaluations metric.Int64Counter
	errors      metric.Int64Counter
	latency     metric.Float64Histogram
}

// newInstruments creates the evaluation instruments. On error the returned
// instruments are no-ops.
func newInstruments(meter metric.Meter) (instruments, error) {
	evaluations, err1 := meter.Int64Counter(MetricEvaluations,
		metric.WithDescription("Number of expression evaluations"),
	)

	failures, err2 := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Number of failed expression evaluations"),
	)

	latency, err3 := meter.Float64Histogram(MetricLatency,
		metric.WithDescription("Expression evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)

	if err := errors.Join(err1, err2, err3); err != nil {
		return noopInstruments(), err
	}

	return instruments{
		evaluations: evaluations,
		errors:      failures,
		latency:     latency,
	}, nil
}

func noopInstruments() instruments {
	meter := noop.NewMeterProvider().Meter(ScopeName)

	evaluations, _ := meter.Int64Counter(MetricEvaluations)
	failures, _ := meter.Int64Counter(MetricErrors)
	latency, _ := meter.Float64Histogram(MetricLatency)

	return instruments{evaluations: evaluations, errors: failures, latency: latency}
}

func (m instruments) record(ctx context.Context, elapsed time.Duration, attrs ...attribute.KeyValue) {
	opt := metric.WithAttributes(attrs...)

	m.evaluations.Add(ctx, 1, opt)
	m.latency.Record(ctx, float64(elapsed)/float64(time.Millisecond), opt)
}

func (m instruments) failed(ctx context.Context, attrs ...attribute.KeyValue) {
	m.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
}
