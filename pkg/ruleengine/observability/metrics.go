package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records rule engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordCompile records a rule compilation with its duration and error status.
	RecordCompile(ctx context.Context, duration time.Duration, err error)

	// RecordCombine records how many rules were folded into one tree.
	RecordCombine(ctx context.Context, ruleCount int)

	// RecordEvaluation records an evaluation with its verdict, duration and error status.
	RecordEvaluation(ctx context.Context, ruleName string, verdict bool, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	compiles      metric.Int64Counter
	compileErrors metric.Int64Counter
	compileTime   metric.Float64Histogram
	combinedRules metric.Int64Histogram
	evaluations   metric.Int64Counter
	evalErrors    metric.Int64Counter
	evalLatency   metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("ruleengine")

	compiles, err := meter.Int64Counter("ruleengine.compile.count",
		metric.WithDescription("Number of rule compilations"),
	)
	if err != nil {
		return nil, err
	}

	compileErrors, err := meter.Int64Counter("ruleengine.compile.errors",
		metric.WithDescription("Number of rules that failed to compile"),
	)
	if err != nil {
		return nil, err
	}

	compileTime, err := meter.Float64Histogram("ruleengine.compile.latency_ms",
		metric.WithDescription("Rule compilation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	combinedRules, err := meter.Int64Histogram("ruleengine.combine.rules",
		metric.WithDescription("Number of rules folded into a combined tree"),
	)
	if err != nil {
		return nil, err
	}

	evaluations, err := meter.Int64Counter("ruleengine.evaluate.count",
		metric.WithDescription("Number of rule evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalErrors, err := meter.Int64Counter("ruleengine.evaluate.errors",
		metric.WithDescription("Number of evaluations that returned an error"),
	)
	if err != nil {
		return nil, err
	}

	evalLatency, err := meter.Float64Histogram("ruleengine.evaluate.latency_ms",
		metric.WithDescription("Rule evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		compiles:      compiles,
		compileErrors: compileErrors,
		compileTime:   compileTime,
		combinedRules: combinedRules,
		evaluations:   evaluations,
		evalErrors:    evalErrors,
		evalLatency:   evalLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordCompile records a compilation.
func (m *otelMetrics) RecordCompile(ctx context.Context, duration time.Duration, err error) {
	m.compiles.Add(ctx, 1)
	m.compileTime.Record(ctx, durationMs(duration))
	if err != nil {
		m.compileErrors.Add(ctx, 1)
	}
}

// RecordCombine records a combination.
func (m *otelMetrics) RecordCombine(ctx context.Context, ruleCount int) {
	m.combinedRules.Record(ctx, int64(ruleCount))
}

// RecordEvaluation records an evaluation.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, ruleName string, verdict bool, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("rule", ruleName),
	}

	if err != nil {
		m.evaluations.Add(ctx, 1, metric.WithAttributes(attrs...))
		m.evalErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		m.evaluations.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.Bool("verdict", verdict))...))
	}
	m.evalLatency.Record(ctx, durationMs(duration), metric.WithAttributes(attrs...))
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
