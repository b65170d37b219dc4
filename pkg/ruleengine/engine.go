package ruleengine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/ruleengine/pkg/ruleengine/audit"
	"github.com/randalmurphal/ruleengine/pkg/ruleengine/observability"
	"go.opentelemetry.io/otel/attribute"
)

// Engine runs the compile and evaluate pipeline with logging, metrics,
// tracing and decision auditing. The zero-option Engine behaves exactly like
// the package-level CreateRule, CombineRules and EvaluateRule functions.
//
// An Engine holds no per-call state and is safe for concurrent use.
type Engine struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	audit   audit.Store
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	var cfg engineConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		logger:  cfg.logger,
		metrics: cfg.metrics(),
		spans:   cfg.spans(),
		audit:   cfg.auditStore,
	}
}

// Compile tokenizes and parses a rule.
func (e *Engine) Compile(ctx context.Context, rule string) (node Node, err error) {
	ctx, span := e.spans.StartCompileSpan(ctx, rule)
	defer func() { e.spans.EndSpanWithError(span, err) }()

	start := time.Now()
	node, err = CreateRule(rule)
	duration := time.Since(start)

	e.metrics.RecordCompile(ctx, duration, err)
	if err != nil {
		observability.LogRuleCompileError(e.logger, rule, err)
		return nil, err
	}
	observability.LogRuleCompiled(e.logger, rule, msSince(duration))
	return node, nil
}

// Combine compiles each rule and joins them into a left-folded conjunction.
// It returns a nil Node when rules is empty.
func (e *Engine) Combine(ctx context.Context, rules []string) (Node, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	nodes := make([]Node, 0, len(rules))
	for i, rule := range rules {
		n, err := e.Compile(ctx, rule)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		nodes = append(nodes, n)
	}
	e.metrics.RecordCombine(ctx, len(nodes))
	observability.LogRulesCombined(e.logger, len(nodes))
	return Combine(nodes...), nil
}

// Evaluate runs a compiled rule against data. name identifies the rule in
// logs, metrics, spans and audit records.
//
// A failure to record the decision is logged and does not change the result.
func (e *Engine) Evaluate(ctx context.Context, name string, node Node, data Context) (verdict bool, err error) {
	ctx, span := e.spans.StartEvaluateSpan(ctx, name)
	defer func() { e.spans.EndSpanWithError(span, err) }()

	start := time.Now()
	verdict, err = EvaluateRule(node, data)
	duration := time.Since(start)

	e.metrics.RecordEvaluation(ctx, name, verdict, duration, err)
	if err != nil {
		observability.LogEvaluationError(e.logger, name, err, msSince(duration))
	} else {
		e.spans.AddSpanEvent(ctx, "verdict", attribute.Bool("rule.verdict", verdict))
		observability.LogEvaluation(e.logger, name, verdict, msSince(duration))
	}

	e.record(name, node, data, verdict, err)
	return verdict, err
}

func (e *Engine) record(name string, node Node, data Context, verdict bool, evalErr error) {
	if e.audit == nil {
		return
	}
	rule := ""
	if node != nil {
		rule = node.String()
	}
	d := audit.NewDecision(name, rule, data.Map(), verdict, evalErr)
	if err := e.audit.Record(d); err != nil {
		observability.LogAuditError(e.logger, name, err)
	}
}

func msSince(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
