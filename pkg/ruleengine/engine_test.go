package ruleengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/randalmurphal/ruleengine/pkg/ruleengine/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// logBuffer captures JSON log lines from an Engine.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) entries(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func (b *logBuffer) find(t *testing.T, msg string) map[string]any {
	t.Helper()
	for _, e := range b.entries(t) {
		if e["msg"] == msg {
			return e
		}
	}
	t.Fatalf("no log entry %q", msg)
	return nil
}

func newTestLogger() (*slog.Logger, *logBuffer) {
	buf := &logBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// failingStore rejects every decision.
type failingStore struct {
	audit.Store
}

func (failingStore) Record(audit.Decision) error {
	return errors.New("disk full")
}

// TestEngine_ZeroOptions behaves like the package-level functions.
func TestEngine_ZeroOptions(t *testing.T) {
	ctx := context.Background()
	eng := New()

	rule := "((age > 30 AND department = 'Sales') OR (age < 25 AND department = 'Marketing')) AND (salary > 50000 OR experience > 5)"
	node, err := eng.Compile(ctx, rule)
	require.NoError(t, err)

	direct, err := CreateRule(rule)
	require.NoError(t, err)
	assert.Equal(t, direct.String(), node.String())

	ok, err := eng.Evaluate(ctx, "demo", node, employee())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngine_Compile_Logs(t *testing.T) {
	logger, buf := newTestLogger()
	eng := New(WithLogger(logger))

	_, err := eng.Compile(context.Background(), "age > 30")
	require.NoError(t, err)

	entry := buf.find(t, "rule compiled")
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "age > 30", entry["source"])
	assert.Contains(t, entry, "duration_ms")

	_, err = eng.Compile(context.Background(), "(age > 30")
	require.ErrorIs(t, err, ErrMalformedRule)

	entry = buf.find(t, "rule compile failed")
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "(age > 30", entry["source"])
}

func TestEngine_Combine(t *testing.T) {
	logger, buf := newTestLogger()
	eng := New(WithLogger(logger))
	ctx := context.Background()

	node, err := eng.Combine(ctx, []string{"age > 30", "salary > 50000", "experience > 5"})
	require.NoError(t, err)
	assert.Equal(t, "((age > 30 AND salary > 50000) AND experience > 5)", node.String())
	assert.Equal(t, 3.0, buf.find(t, "rules combined")["rule_count"])

	node, err = eng.Combine(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, node)

	_, err = eng.Combine(ctx, []string{"age > 30", "AND"})
	require.ErrorIs(t, err, ErrMalformedRule)
	assert.Contains(t, err.Error(), "rule 1: ")

	var malformed *MalformedRuleError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "AND", malformed.Rule)
}

func TestEngine_Evaluate_Logs(t *testing.T) {
	logger, buf := newTestLogger()
	eng := New(WithLogger(logger))
	ctx := context.Background()

	ok, err := eng.Evaluate(ctx, "senior", mustCreate(t, "age > 30"), employee())
	require.NoError(t, err)
	assert.True(t, ok)

	entry := buf.find(t, "rule evaluated")
	assert.Equal(t, "senior", entry["rule"])
	assert.Equal(t, true, entry["verdict"])

	_, err = eng.Evaluate(ctx, "broken", mustCreate(t, "age >"), employee())
	require.ErrorIs(t, err, ErrMalformedOperand)

	entry = buf.find(t, "rule evaluation failed")
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "broken", entry["rule"])
}

// TestEngine_Evaluate_Audit records one decision per evaluation.
func TestEngine_Evaluate_Audit(t *testing.T) {
	store := audit.NewMemoryStore()
	eng := New(WithAuditStore(store))
	ctx := context.Background()

	node := mustCreate(t, "age > 30 AND department = 'Sales'")
	ok, err := eng.Evaluate(ctx, "senior_sales", node, employee())
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = eng.Evaluate(ctx, "senior_sales", node, Context{"age": Number(20), "department": Text("Sales")})
	require.NoError(t, err)

	_, err = eng.Evaluate(ctx, "broken", mustCreate(t, "age >"), employee())
	require.Error(t, err)

	decisions, err := store.List("senior_sales")
	require.NoError(t, err)
	require.Len(t, decisions, 2)

	first := decisions[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "(age > 30 AND department = 'Sales')", first.Rule)
	assert.True(t, first.Verdict)
	assert.Equal(t, 35.0, first.Context["age"])
	assert.Equal(t, "Sales", first.Context["department"])
	assert.False(t, decisions[1].Verdict)

	failed, err := store.List("broken")
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.True(t, failed[0].Failed())
	assert.Contains(t, failed[0].Error, "malformed operand")
}

// TestEngine_Evaluate_AuditFailure keeps the verdict when recording fails.
func TestEngine_Evaluate_AuditFailure(t *testing.T) {
	logger, buf := newTestLogger()
	eng := New(WithLogger(logger), WithAuditStore(failingStore{}))

	ok, err := eng.Evaluate(context.Background(), "senior", mustCreate(t, "age > 30"), employee())
	require.NoError(t, err)
	assert.True(t, ok)

	entry := buf.find(t, "decision audit failed")
	assert.Equal(t, "disk full", entry["error"])
}

// TestEngine_Evaluate_NilNode audits the failure without panicking.
func TestEngine_Evaluate_NilNode(t *testing.T) {
	store := audit.NewMemoryStore()
	eng := New(WithAuditStore(store))

	_, err := eng.Evaluate(context.Background(), "empty", nil, employee())
	assert.ErrorIs(t, err, ErrInvalidNode)

	decisions, err := store.List("empty")
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, "", decisions[0].Rule)
}

// TestEngine_Observability checks the metrics and spans emitted by one
// compile and two evaluations.
func TestEngine_Observability(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	origMP, origTP := otel.GetMeterProvider(), otel.GetTracerProvider()
	otel.SetMeterProvider(mp)
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetMeterProvider(origMP)
		otel.SetTracerProvider(origTP)
		_ = mp.Shutdown(context.Background())
		_ = tp.Shutdown(context.Background())
	})

	eng := New(WithMetrics(true), WithTracing(true))
	ctx := context.Background()

	node, err := eng.Compile(ctx, "age > 30")
	require.NoError(t, err)
	_, err = eng.Evaluate(ctx, "senior", node, employee())
	require.NoError(t, err)
	_, err = eng.Evaluate(ctx, "broken", mustCreate(t, "age >"), employee())
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					counts[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), counts["ruleengine.compile.count"])
	assert.Equal(t, int64(2), counts["ruleengine.evaluate.count"])
	assert.Equal(t, int64(1), counts["ruleengine.evaluate.errors"])

	spans := exporter.GetSpans()
	byName := map[string][]tracetest.SpanStub{}
	for _, s := range spans {
		byName[s.Name] = append(byName[s.Name], s)
	}
	require.Len(t, byName["ruleengine.compile"], 1)
	require.Len(t, byName["ruleengine.evaluate"], 2)

	var sawVerdict, sawError bool
	for _, s := range byName["ruleengine.evaluate"] {
		if s.Status.Code == codes.Error {
			sawError = true
			continue
		}
		for _, ev := range s.Events {
			if ev.Name == "verdict" {
				assert.Contains(t, ev.Attributes, attribute.Bool("rule.verdict", true))
				sawVerdict = true
			}
		}
	}
	assert.True(t, sawVerdict)
	assert.True(t, sawError)
}

// TestEngine_ConcurrentEvaluate shares one engine and tree across goroutines.
func TestEngine_ConcurrentEvaluate(t *testing.T) {
	store := audit.NewMemoryStore()
	eng := New(WithAuditStore(store))
	node := mustCreate(t, "age > 30 AND department = 'Sales'")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(age float64) {
			defer wg.Done()
			ok, err := eng.Evaluate(context.Background(), "senior_sales", node,
				Context{"age": Number(age), "department": Text("Sales")})
			assert.NoError(t, err)
			assert.Equal(t, age > 30, ok)
		}(float64(20 + i))
	}
	wg.Wait()

	assert.Equal(t, 20, store.Len())
}
