// Package observability provides structured logging, metrics and tracing
// for rule compilation and evaluation.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds rule context to a logger.
// Returns a new logger with a rule field.
//
// Example:
//
//	enriched := EnrichLogger(logger, "eligibility")
//	enriched.Info("evaluating") // includes rule=eligibility
func EnrichLogger(logger *slog.Logger, ruleName string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("rule", ruleName))
}

// LogRuleCompiled logs a successful compilation.
func LogRuleCompiled(logger *slog.Logger, source string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("rule compiled",
		slog.String("source", source),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRuleCompileError logs a rule that failed to parse.
func LogRuleCompileError(logger *slog.Logger, source string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("rule compile failed",
		slog.String("source", source),
		slog.String("error", err.Error()),
	)
}

// LogRulesCombined logs the combination of several rules into one tree.
func LogRulesCombined(logger *slog.Logger, count int) {
	if logger == nil {
		return
	}
	logger.Debug("rules combined",
		slog.Int("rule_count", count),
	)
}

// LogEvaluation logs a completed evaluation.
func LogEvaluation(logger *slog.Logger, ruleName string, verdict bool, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("rule evaluated",
		slog.String("rule", ruleName),
		slog.Bool("verdict", verdict),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEvaluationError logs an evaluation that could not produce a verdict.
func LogEvaluationError(logger *slog.Logger, ruleName string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("rule evaluation failed",
		slog.String("rule", ruleName),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogAuditError logs a decision that could not be recorded (non-fatal).
func LogAuditError(logger *slog.Logger, ruleName string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("decision audit failed",
		slog.String("rule", ruleName),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
