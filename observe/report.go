package observe

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Recorder is an in-process meter provider whose evaluation metrics can be
// read back as a [Report].
type Recorder struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

// NewRecorder returns a Recorder with an empty collection.
func NewRecorder() *Recorder {
	reader := sdkmetric.NewManualReader()

	return &Recorder{
		reader:   reader,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

// MeterProvider returns the provider to pass to [WithMeterProvider].
func (r *Recorder) MeterProvider() metric.MeterProvider { return r.provider }

// Shutdown releases the provider. Collect fails afterward.
func (r *Recorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

// Report totals the evaluation metrics over every attribute set.
type Report struct {
	Evaluations int64
	Errors      int64
	Count       uint64  // latency samples
	LatencyMS   float64 // sum of latency samples
}

// Collect reads the current totals.
func (r *Recorder) Collect(ctx context.Context) (Report, error) {
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(ctx, &rm); err != nil {
		return Report{}, err
	}

	var rep Report

	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != ScopeName {
			continue
		}

		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var n int64
				for _, dp := range data.DataPoints {
					n += dp.Value
				}

				switch m.Name {
				case MetricEvaluations:
					rep.Evaluations += n
				case MetricErrors:
					rep.Errors += n
				}

			case metricdata.Histogram[float64]:
				if m.Name != MetricLatency {
					continue
				}

				for _, dp := range data.DataPoints {
					rep.Count += dp.Count
					rep.LatencyMS += dp.Sum
				}
			}
		}
	}

	return rep, nil
}

// Mean returns the mean latency in milliseconds, or 0 with no samples.
func (r Report) Mean() float64 {
	if r.Count == 0 {
		return 0
	}

	return r.LatencyMS / float64(r.Count)
}

func (r Report) String() string {
	return fmt.Sprintf("%s=%d %s=%d %s=%.3f/%d",
		MetricEvaluations, r.Evaluations,
		MetricErrors, r.Errors,
		MetricLatency, r.Mean(), r.Count)
}
