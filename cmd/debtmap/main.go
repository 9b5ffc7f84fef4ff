// Package main is the entry point for the debtmap CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/debtmap/debtmap/cmd/debtmap/commands"
	"github.com/debtmap/debtmap/pkg/observability"
)

// version/commit/date are set via -ldflags at build time; zero values
// print as "dev"/"none"/"unknown", the conventional Go CLI fallback.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	verbose bool
	noColor bool
)

func main() {
	os.Exit(run())
}

// run holds all exit-code-bearing logic so deferred cleanup (notably
// observability.Providers.Shutdown) always executes, which os.Exit
// called directly from main would skip.
func run() int {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version

	providers, err := observability.Init(obsCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: observability init: %v\n", err)

		return 1
	}

	slog.SetDefault(providers.Logger)

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := providers.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: observability shutdown: %v\n", err)
		}
	}()

	rootCmd := &cobra.Command{
		Use:   "debtmap",
		Short: "Debtmap - technical debt prioritization via call-graph and coverage analysis",
		Long: `Debtmap ranks source functions and files by technical-debt priority,
combining call-graph structure, cyclomatic/cognitive complexity, LCOV
coverage, and optional context signals into one unified score.

Commands:
  analyze   Run the full pipeline and print ranked debt items
  validate  Run the pipeline and grade it against the density gate
  lookup    Resolve a function identity against a merged call graph`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(commands.NewAnalyzeCommand(&verbose, &noColor))
	rootCmd.AddCommand(commands.NewValidateCommand(&noColor))
	rootCmd.AddCommand(commands.NewLookupCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return 1
	}

	return 0
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "debtmap %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
