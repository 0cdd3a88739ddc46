package observe

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ardnew/criteria/lang"
	"github.com/ardnew/criteria/log"
)

// ScopeName identifies the instrumentation scope of tracers and meters.
const ScopeName = "github.com/ardnew/criteria"

// Span and metric names.
const (
	SpanEvaluate      = "criteria.evaluate"
	MetricEvaluations = "criteria.evaluations"
	MetricErrors      = "criteria.errors"
	MetricLatency     = "criteria.latency_ms"
)

// Attribute keys.
const (
	AttrEvaluationID  = "evaluation.id"
	AttrExprLength    = "expression.length"
	AttrResultKind    = "result.kind"
	AttrErrorCategory = "error.category"
)

// resultFailed is the result.kind of a failed evaluation.
const resultFailed = "error"

// Evaluator evaluates expressions. [*lang.Interpreter] implements it.
type Evaluator interface {
	EvaluateValue(ctx context.Context, expression string) (lang.Value, error)
}

var _ Evaluator = (*lang.Interpreter)(nil)

// Instrumented wraps an [Evaluator] with a trace span and metrics per call.
type Instrumented struct {
	next    Evaluator
	tracer  trace.Tracer
	metrics instruments
	logger  log.Logger
	newID   func() string
}

type config struct {
	tp     trace.TracerProvider
	mp     metric.MeterProvider
	logger log.Logger
}

// Option configures [Instrument].
type Option func(*config)

// WithTracerProvider sets the provider of the evaluation tracer.
// The default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.tp = tp }
}

// WithMeterProvider sets the provider of the evaluation meter.
// The default is the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) { c.mp = mp }
}

// WithLogger sets the logger that reports instrumentation failures.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Instrument returns next wrapped with tracing and metrics.
func Instrument(next Evaluator, opts ...Option) *Instrumented {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.tp == nil {
		cfg.tp = otel.GetTracerProvider()
	}

	if cfg.mp == nil {
		cfg.mp = otel.GetMeterProvider()
	}

	m, err := newInstruments(cfg.mp.Meter(ScopeName))
	if err != nil {
		cfg.logger.Warn("metrics disabled", slog.Any("error", err))
	}

	return &Instrumented{
		next:    next,
		tracer:  cfg.tp.Tracer(ScopeName),
		metrics: m,
		logger:  cfg.logger,
		newID:   uuid.NewString,
	}
}

// EvaluateValue evaluates expression with the wrapped [Evaluator] inside a
// span named [SpanEvaluate].
func (in *Instrumented) EvaluateValue(
	ctx context.Context,
	expression string,
) (lang.Value, error) {
	id := in.newID()

	ctx, span := in.tracer.Start(ctx, SpanEvaluate,
		trace.WithAttributes(
			attribute.String(AttrEvaluationID, id),
			attribute.Int(AttrExprLength, utf8.RuneCountInString(expression)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	start := time.Now()
	v, err := in.next.EvaluateValue(ctx, expression)
	elapsed := time.Since(start)

	kind := v.Kind().String()
	if err != nil {
		kind = resultFailed
	}

	span.SetAttributes(attribute.String(AttrResultKind, kind))

	attrs := []attribute.KeyValue{attribute.String(AttrResultKind, kind)}

	if err != nil {
		category := Category(err)

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		in.metrics.failed(ctx, attribute.String(AttrErrorCategory, category))

		in.logger.DebugContext(ctx, "evaluation failed",
			slog.String(AttrEvaluationID, id),
			slog.String(AttrErrorCategory, category))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	in.metrics.record(ctx, elapsed, attrs...)

	return v, err
}

// Evaluate is [Instrumented.EvaluateValue] returning the native result.
func (in *Instrumented) Evaluate(ctx context.Context, expression string) (any, error) {
	v, err := in.EvaluateValue(ctx, expression)
	if err != nil {
		return nil, err
	}

	return v.Native(), nil
}

var categories = []struct {
	err  error
	name string
}{
	{lang.ErrSyntax, "syntax"},
	{lang.ErrEmptyExpression, "empty"},
	{lang.ErrTypeMismatch, "type_mismatch"},
	{lang.ErrDivisionByZero, "division_by_zero"},
	{lang.ErrInvalidOperation, "invalid_operation"},
	{lang.ErrIllFormedTree, "ill_formed"},
	{context.Canceled, "canceled"},
	{context.DeadlineExceeded, "deadline"},
}

// Category names the class of an evaluation error for metric attributes.
func Category(err error) string {
	for _, c := range categories {
		if errors.Is(err, c.err) {
			return c.name
		}
	}

	return "other"
}
