/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/jacobarthurs/pgwalk/internal/logging"
)

var Version = "dev"

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" && info.Main.Version != "" {
			Version = info.Main.Version
		}
	}
	rootCmd.Version = Version

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error, disabled")
}

// UsageError reports a command invoked without its required input.
type UsageError struct {
	cmd *cobra.Command
	msg string
}

func (e *UsageError) Error() string {
	return e.msg
}

var rootCmd = &cobra.Command{
	Use:           "pgwalk",
	SilenceUsage:  true,
	SilenceErrors: true,
	Short:         "Diagnose PostgreSQL EXPLAIN ANALYZE plans node by node",
	Long: `pgwalk walks a PostgreSQL EXPLAIN (ANALYZE, BUFFERS, FORMAT JSON) plan and
reports per-node diagnostics: row estimation errors, disk and hash spills,
buffer cache efficiency, filter selectivity and index suggestions.

Results can be printed to the console, emitted as JSON, or rendered as an
interactive HTML graph.`,
	Example: `  # Analyze a saved plan
  pgwalk analyze plan.json

  # Render an interactive graph
  pgwalk analyze plan.json --format graph --out plan.html

  # Write a config file with tunable thresholds
  pgwalk init`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		return logging.Configure(os.Stderr, level)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		usageErr.cmd.SetOut(os.Stdout)
		fmt.Fprintf(os.Stdout, "Error: %s\n", usageErr.msg)
		_ = usageErr.cmd.Usage()
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
