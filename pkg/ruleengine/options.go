package ruleengine

import (
	"log/slog"

	"github.com/randalmurphal/ruleengine/pkg/ruleengine/audit"
	"github.com/randalmurphal/ruleengine/pkg/ruleengine/observability"
)

// engineConfig holds configuration for an Engine.
type engineConfig struct {
	logger         *slog.Logger
	metricsEnabled bool
	tracingEnabled bool
	auditStore     audit.Store
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithLogger sets the logger for compile and evaluate events.
// A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
// Default: false
func WithMetrics(enabled bool) Option {
	return func(c *engineConfig) {
		c.metricsEnabled = enabled
	}
}

// WithTracing enables OpenTelemetry spans using the global tracer provider.
// Default: false
func WithTracing(enabled bool) Option {
	return func(c *engineConfig) {
		c.tracingEnabled = enabled
	}
}

// WithAuditStore records every evaluation in store.
//
// Example:
//
//	store, _ := audit.NewSQLiteStore("./decisions.db")
//	eng := ruleengine.New(ruleengine.WithAuditStore(store))
func WithAuditStore(store audit.Store) Option {
	return func(c *engineConfig) {
		c.auditStore = store
	}
}

func (c engineConfig) metrics() observability.MetricsRecorder {
	if c.metricsEnabled {
		return observability.NewMetricsRecorder()
	}
	return observability.NoopMetrics{}
}

func (c engineConfig) spans() observability.SpanManager {
	if c.tracingEnabled {
		return observability.NewSpanManager()
	}
	return observability.NoopSpanManager{}
}
