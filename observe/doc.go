// Package observe instruments expression evaluation with OpenTelemetry.
//
// [Instrument] wraps any [Evaluator], such as a [lang.Interpreter], so that
// each evaluation runs inside a span named [SpanEvaluate] and is counted in
// the [MetricEvaluations], [MetricErrors], and [MetricLatency] instruments.
// Providers default to the otel globals.
package observe
