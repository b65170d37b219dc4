package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/randalmurphal/ruleengine/pkg/ruleengine/audit"
	"github.com/spf13/cobra"
)

type auditOptions struct {
	db     string
	rule   string
	asJSON bool
}

func auditCommand() *cobra.Command {
	var opt auditOptions

	c := &cobra.Command{
		Use:     "audit",
		Short:   "List recorded decisions for a rule",
		Example: "  rulecheck audit --db ./decisions.db --rule senior_sales",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, opt)
		},
	}
	c.Flags().StringVar(&opt.db, "db", "", "Path to the SQLite decision database")
	c.Flags().StringVar(&opt.rule, "rule", "", "Rule name to list decisions for")
	c.Flags().BoolVar(&opt.asJSON, "json", false, "Print one JSON object per decision")
	_ = c.MarkFlagRequired("db")
	_ = c.MarkFlagRequired("rule")
	return c
}

func runAudit(cmd *cobra.Command, opt auditOptions) error {
	if _, err := os.Stat(opt.db); err != nil {
		return fmt.Errorf("open audit database: %w", err)
	}

	store, err := audit.NewSQLiteStore(opt.db)
	if err != nil {
		return err
	}
	defer store.Close()

	decisions, err := store.List(opt.rule)
	if err != nil {
		return fmt.Errorf("list decisions: %w", err)
	}

	out := cmd.OutOrStdout()
	if opt.asJSON {
		enc := json.NewEncoder(out)
		for _, d := range decisions {
			if err := enc.Encode(d); err != nil {
				return err
			}
		}
		return nil
	}

	if len(decisions) == 0 {
		fmt.Fprintf(out, "no decisions recorded for %s\n", opt.rule)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tTIME\tVERDICT\tERROR\tID")
	for _, d := range decisions {
		verdict := fmt.Sprint(d.Verdict)
		if d.Failed() {
			verdict = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			d.Sequence, d.Timestamp.Format(time.RFC3339), verdict, d.Error, d.ID)
	}
	return tw.Flush()
}
