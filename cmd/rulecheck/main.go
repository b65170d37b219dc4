// Command rulecheck parses rules and evaluates rules files from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := GetCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetCommand returns the root command with every subcommand attached.
func GetCommand() *cobra.Command {
	c := &cobra.Command{
		Use:           "rulecheck",
		Short:         "Parse and evaluate boolean rules",
		Long:          "rulecheck compiles AND/OR rules into syntax trees and evaluates them against records.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableNoDescFlag:   true,
			DisableDescriptions: true,
		},
	}

	c.AddCommand(
		parseCommand(),
		evalCommand(),
		auditCommand(),
		versionCommand(),
	)
	return c
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rulecheck version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rulecheck %s\n", version)
		},
	}
}
