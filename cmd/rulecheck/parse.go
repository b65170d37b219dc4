package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/randalmurphal/ruleengine/pkg/ruleengine"
	"github.com/spf13/cobra"
)

func parseCommand() *cobra.Command {
	var showTokens bool

	c := &cobra.Command{
		Use:   "parse <rule>",
		Short: "Print the tokens and syntax tree of a rule",
		Example: `  rulecheck parse "age > 30 AND department = 'Sales'"
  rulecheck parse --tokens=false "a = 1 OR b = 2 AND c = 3"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if showTokens {
				tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
				fmt.Fprintln(tw, "TYPE\tVALUE")
				for _, tok := range ruleengine.Tokenize(rule) {
					fmt.Fprintf(tw, "%s\t%s\n", tok.Type, tok.Value)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}

			node, err := ruleengine.CreateRule(rule)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "AST: %s\n", node)
			return nil
		},
	}
	c.Flags().BoolVar(&showTokens, "tokens", true, "Print the token table before the tree")
	return c
}
