// Package main provides the entry point for the SourceWeaver CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for SourceWeaver.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sourceweaver",
		Short: "Multi-provider OSINT aggregation tool",
		Long: `SourceWeaver fans a single investigative query out to web-search,
breach-database, and malware-reputation providers, respects each
provider's rate limits, and merges the answers into one report.

Provider credentials are read from flags, environment variables
(SOURCEWEAVER_SEARCH_API_KEY, SOURCEWEAVER_SEARCH_ENGINE_ID,
SOURCEWEAVER_BREACH_API_KEY, SOURCEWEAVER_REPUTATION_API_KEY), or a
.sourceweaver.yml configuration file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewInvestigateCmd())
	cmd.AddCommand(NewExposureCmd())
	cmd.AddCommand(NewReputationCmd())
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
