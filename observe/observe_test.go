package observe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ardnew/criteria/lang"
)

type harness struct {
	spans  *tracetest.InMemoryExporter
	reader *sdkmetric.ManualReader
	eval   *Instrumented
}

func setup(t *testing.T, next Evaluator) harness {
	t.Helper()

	spans := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(spans))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	in := Instrument(next, WithTracerProvider(tp), WithMeterProvider(mp))
	in.newID = func() string { return "test-id" }

	return harness{spans: spans, reader: reader, eval: in}
}

func (h harness) metric(t *testing.T, name string) *metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}

	return nil
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}

	return attribute.Value{}, false
}

func TestInstrument_Success(t *testing.T) {
	h := setup(t, lang.New())

	got, err := h.eval.Evaluate(t.Context(), "1 + 2 * 3")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)

	spans := h.spans.GetSpans()
	require.Len(t, spans, 1)

	s := spans[0]
	assert.Equal(t, SpanEvaluate, s.Name)
	assert.Equal(t, codes.Ok, s.Status.Code)

	id, ok := attrValue(s.Attributes, AttrEvaluationID)
	require.True(t, ok)
	assert.Equal(t, "test-id", id.AsString())

	length, ok := attrValue(s.Attributes, AttrExprLength)
	require.True(t, ok)
	assert.Equal(t, int64(9), length.AsInt64())

	kind, ok := attrValue(s.Attributes, AttrResultKind)
	require.True(t, ok)
	assert.Equal(t, "number", kind.AsString())

	m := h.metric(t, MetricEvaluations)
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)

	lat := h.metric(t, MetricLatency)
	require.NotNil(t, lat)

	hist, ok := lat.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)

	assert.Nil(t, h.metric(t, MetricErrors))
}

func TestInstrument_Failure(t *testing.T) {
	h := setup(t, lang.New())

	_, err := h.eval.EvaluateValue(t.Context(), "1 +")
	require.ErrorIs(t, err, lang.ErrSyntax)

	spans := h.spans.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.NotEmpty(t, spans[0].Events)

	kind, _ := attrValue(spans[0].Attributes, AttrResultKind)
	assert.Equal(t, "error", kind.AsString())

	m := h.metric(t, MetricErrors)
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)

	category, ok := sum.DataPoints[0].Attributes.Value(attribute.Key(AttrErrorCategory))
	require.True(t, ok)
	assert.Equal(t, "syntax", category.AsString())
}

func TestInstrument_DefaultsToGlobals(t *testing.T) {
	in := Instrument(lang.New())

	got, err := in.Evaluate(t.Context(), "'a' == 'a'")
	require.NoError(t, err)
	assert.Equal(t, true, got)
	assert.NotEmpty(t, in.newID())
}

func TestCategory(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&lang.SyntaxError{Position: 1, Reason: "x"}, "syntax"},
		{lang.ErrEmptyExpression, "empty"},
		{lang.ErrTypeMismatch.With(), "type_mismatch"},
		{lang.ErrDivisionByZero, "division_by_zero"},
		{lang.ErrInvalidOperation, "invalid_operation"},
		{lang.ErrIllFormedTree, "ill_formed"},
		{context.Canceled, "canceled"},
		{errors.New("other"), "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Category(tt.err), tt.err.Error())
	}
}
