package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jacobarthurs/pgwalk/internal/analyzer"
	"github.com/jacobarthurs/pgwalk/internal/plan"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type textWriter struct {
	w     io.Writer
	color bool
	err   error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

// paint wraps s in the given ANSI codes when color is enabled.
func (tw *textWriter) paint(s string, codes ...string) string {
	if !tw.color || len(codes) == 0 {
		return s
	}
	return strings.Join(codes, "") + s + colorReset
}

type TextOptions struct {
	Color bool
}

// TextSink prints an indented console report, one block per plan node.
type TextSink struct {
	tw       *textWriter
	nodes    int
	flagged  int
	critical int
}

// NewTextSink writes the query summary header and returns a sink for the
// plan tree. Write errors surface from Emit or Close.
func NewTextSink(w io.Writer, result *plan.QueryResult, opts TextOptions) *TextSink {
	tw := &textWriter{w: w, color: opts.Color}

	tw.printf("%s\n\n", tw.paint("=== QUERY SUMMARY ===", colorBold, colorCyan))
	tw.printf("Execution time: %.2f ms\n", result.ExecutionTime)
	if result.PlanningTime > 0 {
		tw.printf("Planning time:  %.2f ms\n", result.PlanningTime)
	}
	tw.printf("\n%s\n\n", tw.paint("=== PLAN TREE ===", colorBold, colorCyan))

	return &TextSink{tw: tw}
}

func (s *TextSink) Emit(v analyzer.Visit) error {
	tw := s.tw
	node := v.Node
	m := v.Diagnosis.Metrics
	indent := strings.Repeat("  ", v.Depth)

	s.nodes++
	if v.Diagnosis.HasAlerts() {
		s.flagged++
	}

	tw.printf("%s%s\n", indent, tw.paint(node.Label(), colorBold))
	tw.printf("%s  Time: %.3f ms\n", indent, node.ActualTotalTime)
	tw.printf("%s  Rows: %d (planned %d)\n", indent, node.ActualRows, node.PlanRows)
	if node.ActualLoops > 1 {
		tw.printf("%s  Loops: %d\n", indent, node.ActualLoops)
	}
	if m.SharedBlocks > 0 {
		tw.printf("%s  Shared hit percentage: %.2f %%\n", indent, m.SharedHitPct)
	}
	if m.Filter != nil {
		tw.printf("%s  Filter selectivity: %.5f %% (%d rows removed)\n", indent, m.Filter.SelectivityPct, m.Filter.TotalRemoved)
	}
	if m.Workers != nil {
		tw.printf("%s  Number of workers: %d\n", indent, *m.Workers)
	}

	for _, a := range v.Diagnosis.Alerts {
		if a.Severity == analyzer.Critical {
			s.critical++
		}
		tw.printf("%s  %s\n", indent, tw.paint("⚠ "+a.Message, severityColor(a.Severity)))
	}

	tw.printf("\n")
	return tw.err
}

// Close prints the closing tally.
func (s *TextSink) Close() error {
	tw := s.tw
	if s.flagged == 0 {
		tw.printf("%s\n", tw.paint(fmt.Sprintf("%d nodes analyzed, no issues found.", s.nodes), colorBold, colorGreen))
		return tw.err
	}
	tw.printf("%s\n", tw.paint(fmt.Sprintf("%d nodes analyzed, %d with warnings (%d critical).", s.nodes, s.flagged, s.critical), colorDim))
	return tw.err
}

func severityColor(s analyzer.Severity) string {
	switch s {
	case analyzer.Critical:
		return colorRed
	case analyzer.Warning:
		return colorYellow
	default:
		return colorCyan
	}
}
