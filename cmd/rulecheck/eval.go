package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/randalmurphal/ruleengine/pkg/ruleengine"
	"github.com/randalmurphal/ruleengine/pkg/ruleengine/audit"
	"github.com/randalmurphal/ruleengine/pkg/ruleengine/config"
	"github.com/randalmurphal/ruleengine/pkg/ruleengine/observability"
	"github.com/randalmurphal/ruleengine/pkg/ruleengine/ruleset"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// combinedName labels the conjunction of the file's combine list.
const combinedName = "combined"

// adhocContext names the record built from --set when no --context is given.
const adhocContext = "cli"

type evalOptions struct {
	rules   string
	context string
	set     []string
}

func evalCommand() *cobra.Command {
	var opt evalOptions

	c := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate every rule in a rules file against its sample records",
		Example: `  rulecheck eval --rules rules.yaml
  rulecheck eval --rules rules.yaml --context alice --set salary=45000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, opt)
		},
	}
	c.Flags().StringVar(&opt.rules, "rules", "", "Path to a YAML or JSON rules file")
	c.Flags().StringVar(&opt.context, "context", "", "Evaluate only this named record")
	c.Flags().StringArrayVar(&opt.set, "set", nil, "Override a field as key=value (repeatable)")
	_ = c.MarkFlagRequired("rules")
	return c
}

func runEval(cmd *cobra.Command, opt evalOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := config.FromFile(opt.rules)
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), f)
	done := observability.TimedOperation()

	store, err := openStore(f)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	opts := []ruleengine.Option{
		ruleengine.WithLogger(logger),
		ruleengine.WithMetrics(f.Metrics.Enabled),
		ruleengine.WithTracing(f.Tracing.Enabled),
	}
	if store != nil {
		opts = append(opts, ruleengine.WithAuditStore(store))
	}
	eng := ruleengine.New(opts...)

	set, err := compileRules(ctx, eng, f, logger)
	if err != nil {
		return err
	}

	records, err := selectContexts(f, opt)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failures := 0
	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, rec.name)

		for _, name := range set.Names() {
			verdict, err := set.Evaluate(ctx, eng, name, rec.data)
			failures += printVerdict(out, name, verdict, err)
		}

		if len(f.Combine) > 0 {
			node, err := set.Combined(f.Combine...)
			if err != nil {
				return err
			}
			verdict, err := eng.Evaluate(ctx, combinedName, node, rec.data)
			failures += printVerdict(out, combinedName, verdict, err)
		}
	}

	logger.Info("evaluation complete",
		slog.Int("rules", set.Len()),
		slog.Int("contexts", len(records)),
		slog.Int("failures", failures),
		slog.Float64("duration_ms", done()),
	)

	if failures > 0 {
		return fmt.Errorf("%d evaluation(s) failed", failures)
	}
	return nil
}

// compileRules expands parameters and compiles every rule through eng so
// compilation is logged and measured.
func compileRules(ctx context.Context, eng *ruleengine.Engine, f *config.File, logger *slog.Logger) (*ruleset.Set, error) {
	rules, err := f.ExpandedRules()
	if err != nil {
		return nil, err
	}

	set := ruleset.New()
	for _, r := range rules {
		node, err := eng.Compile(ctx, r.Rule)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		if err := set.Put(ruleset.Rule{Name: r.Name, Source: r.Rule, AST: node}); err != nil {
			return nil, err
		}
		observability.EnrichLogger(logger, r.Name).Debug("rule loaded",
			slog.String("tree", node.String()))
	}
	return set, nil
}

type record struct {
	name string
	data ruleengine.Context
}

// selectContexts picks the records to evaluate and applies --set overrides
// to each of them.
func selectContexts(f *config.File, opt evalOptions) ([]record, error) {
	overrides, err := parseOverrides(opt.set)
	if err != nil {
		return nil, err
	}

	var names []string
	switch {
	case opt.context != "":
		names = []string{opt.context}
	case len(f.Contexts) > 0:
		names = f.ContextNames()
	case len(overrides) > 0:
		return []record{{name: adhocContext, data: overrides}}, nil
	default:
		return nil, fmt.Errorf("no contexts to evaluate: define contexts in %s or pass --set", opt.rules)
	}

	records := make([]record, 0, len(names))
	for _, name := range names {
		data, err := f.Context(name)
		if err != nil {
			return nil, err
		}
		for k, v := range overrides {
			data[k] = v
		}
		records = append(records, record{name: name, data: data})
	}
	return records, nil
}

// parseOverrides turns key=value pairs into context values. Values that
// parse as numbers become Numbers; everything else is Text.
func parseOverrides(pairs []string) (ruleengine.Context, error) {
	out := make(ruleengine.Context, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: want key=value", pair)
		}
		if n, err := cast.ToFloat64E(raw); err == nil {
			out[key] = ruleengine.Number(n)
		} else {
			out[key] = ruleengine.Text(raw)
		}
	}
	return out, nil
}

func printVerdict(w io.Writer, name string, verdict bool, err error) int {
	if err != nil {
		fmt.Fprintf(w, "  %s: error: %v\n", name, err)
		return 1
	}
	fmt.Fprintf(w, "  %s: %t\n", name, verdict)
	return 0
}

// openStore returns nil when auditing is disabled.
func openStore(f *config.File) (audit.Store, error) {
	switch f.AuditDriver() {
	case config.AuditMemory:
		return audit.NewMemoryStore(), nil
	case config.AuditSQLite:
		store, err := audit.NewSQLiteStore(f.Audit.Path)
		if err != nil {
			return nil, fmt.Errorf("open audit store: %w", err)
		}
		return store, nil
	default:
		return nil, nil
	}
}

func newLogger(w io.Writer, f *config.File) *slog.Logger {
	opts := &slog.HandlerOptions{Level: f.LogLevel()}
	if f.LogFormat() == config.FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
