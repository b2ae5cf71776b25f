/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jacobarthurs/pgwalk/internal/analyzer"
	"github.com/jacobarthurs/pgwalk/internal/config"
	"github.com/jacobarthurs/pgwalk/internal/logging"
	"github.com/jacobarthurs/pgwalk/internal/output"
	"github.com/jacobarthurs/pgwalk/internal/plan"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Diagnose a single query plan",
	Long: `Diagnose a PostgreSQL query plan captured with:

  EXPLAIN (ANALYZE, BUFFERS, FORMAT JSON) <query>

Every plan node is checked for row estimation errors, disk spills, external
sorts, hash spills, oversized nested loops, dominant cost and poorly
selective filters. Use "-" to read the plan from stdin.`,
	Example: `  # Console report
  pgwalk analyze plan.json

  # Read from stdin
  cat plan.json | pgwalk analyze -

  # Interactive HTML graph
  pgwalk analyze plan.json --format graph --out plan.html

  # JSON for other tools, with the stricter index suggestion policy
  pgwalk analyze plan.json --format json --index-policy strict`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return &UsageError{cmd: cmd, msg: "missing plan file argument"}
		}

		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		configPath, _ := cmd.Flags().GetString("config")
		noColor, _ := cmd.Flags().GetBool("no-color")

		if format != "text" && format != "json" && format != "graph" {
			return fmt.Errorf("invalid output format %q: must be \"text\", \"json\" or \"graph\"", format)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		thresholds, err := cfg.Thresholds()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("index-policy") {
			name, _ := cmd.Flags().GetString("index-policy")
			policy, err := analyzer.IndexPolicyByName(name)
			if err != nil {
				return err
			}
			thresholds.IndexPolicy = policy
		}

		result, err := plan.Resolve(args[0])
		if err != nil {
			return err
		}

		logging.Debug().
			Str("input", args[0]).
			Str("format", format).
			Str("index_policy", thresholds.IndexPolicy.Name).
			Msg("analyzing plan")

		rules := analyzer.NewRuleSet(thresholds)
		out := cmd.OutOrStdout()

		switch format {
		case "json":
			sink := output.NewJSONSink(&result)
			if err := analyzer.Walk(&result, rules, sink); err != nil {
				return err
			}
			return sink.Render(out)
		case "graph":
			sink := output.NewGraphSink(&result, output.GraphOptions{Title: graphTitle(args[0])})
			if err := analyzer.Walk(&result, rules, sink); err != nil {
				return err
			}
			if err := writeGraph(sink, outPath); err != nil {
				return err
			}
			_, err := fmt.Fprintf(out, "Graph written to %s\n", outPath)
			return err
		default:
			sink := output.NewTextSink(out, &result, output.TextOptions{Color: !noColor && isTerminal(out)})
			if err := analyzer.Walk(&result, rules, sink); err != nil {
				return err
			}
			return sink.Close()
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("format", "f", "text", "Output format: text, json, graph")
	analyzeCmd.Flags().StringP("out", "o", "plan.html", "Graph output file (graph format only)")
	analyzeCmd.Flags().String("index-policy", "lenient", "Index suggestion policy: lenient, strict")
	analyzeCmd.Flags().String("config", "", "Config file (default is the user config directory)")
	analyzeCmd.Flags().Bool("no-color", false, "Disable colored output")
}

func writeGraph(sink *output.GraphSink, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating graph file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing graph file: %w", cerr)
		}
	}()
	return sink.Render(f)
}

func graphTitle(input string) string {
	if input == "-" {
		return "Query plan (stdin)"
	}
	return "Query plan: " + filepath.Base(input)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
