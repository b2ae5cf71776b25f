package output

import (
	"encoding/json"
	"io"

	"github.com/jacobarthurs/pgwalk/internal/analyzer"
	"github.com/jacobarthurs/pgwalk/internal/plan"
)

func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type jsonNode struct {
	ID              analyzer.NodeID  `json:"id"`
	NodeType        string           `json:"node_type"`
	Relation        string           `json:"relation,omitempty"`
	ActualTotalTime float64          `json:"actual_total_time_ms"`
	PlanRows        int64            `json:"plan_rows"`
	ActualRows      int64            `json:"actual_rows"`
	ActualLoops     int64            `json:"actual_loops"`
	Warnings        []analyzer.Alert `json:"warnings"`
	Metrics         analyzer.Metrics `json:"metrics"`
	Children        []*jsonNode      `json:"children,omitempty"`
}

type jsonReport struct {
	ExecutionTime float64   `json:"execution_time_ms"`
	PlanningTime  float64   `json:"planning_time_ms,omitempty"`
	NodeCount     int       `json:"node_count"`
	WarningCount  int       `json:"warning_count"`
	Plan          *jsonNode `json:"plan"`
}

// JSONSink rebuilds the plan tree with diagnostics attached and encodes it
// on Render.
type JSONSink struct {
	report jsonReport
	byID   map[analyzer.NodeID]*jsonNode
}

func NewJSONSink(result *plan.QueryResult) *JSONSink {
	return &JSONSink{
		report: jsonReport{
			ExecutionTime: result.ExecutionTime,
			PlanningTime:  result.PlanningTime,
		},
		byID: make(map[analyzer.NodeID]*jsonNode),
	}
}

func (s *JSONSink) Emit(v analyzer.Visit) error {
	alerts := v.Diagnosis.Alerts
	if alerts == nil {
		alerts = []analyzer.Alert{}
	}
	n := &jsonNode{
		ID:              v.ID,
		NodeType:        v.Node.NodeType,
		Relation:        v.Node.RelationName,
		ActualTotalTime: v.Node.ActualTotalTime,
		PlanRows:        v.Node.PlanRows,
		ActualRows:      v.Node.ActualRows,
		ActualLoops:     v.Node.ActualLoops,
		Warnings:        alerts,
		Metrics:         v.Diagnosis.Metrics,
	}
	s.byID[v.ID] = n
	s.report.NodeCount++
	s.report.WarningCount += len(alerts)

	if parent, ok := s.byID[v.ParentID]; ok {
		parent.Children = append(parent.Children, n)
	} else if s.report.Plan == nil {
		s.report.Plan = n
	}
	return nil
}

func (s *JSONSink) Render(w io.Writer) error {
	return RenderJSON(w, s.report)
}
