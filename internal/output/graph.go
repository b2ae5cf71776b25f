package output

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/jacobarthurs/pgwalk/internal/analyzer"
	"github.com/jacobarthurs/pgwalk/internal/plan"
)

// Node colors, from calm to alarming.
const (
	ColorBaseline = "#b3e6b3"
	ColorWarm     = "#ffcc80"
	ColorHot      = "#ff6666"
	ColorAlert    = "#ff4d4d"

	WarmTimeShare = 0.3
	HotTimeShare  = 0.6
)

type GraphOptions struct {
	Title string
}

type graphNode struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Color string `json:"color"`
	Level int    `json:"level"`
	Shape string `json:"shape"`
}

type graphEdge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// GraphSink builds an interactive, top-down vis-network graph with one box
// per plan node and an edge from each parent.
type GraphSink struct {
	title         string
	executionTime float64
	nodes         []graphNode
	edges         []graphEdge
}

func NewGraphSink(result *plan.QueryResult, opts GraphOptions) *GraphSink {
	if opts.Title == "" {
		opts.Title = "Query plan"
	}
	return &GraphSink{title: opts.Title, executionTime: result.ExecutionTime}
}

func (s *GraphSink) Emit(v analyzer.Visit) error {
	s.nodes = append(s.nodes, graphNode{
		ID:    int(v.ID),
		Label: fmt.Sprintf("%s\n%d rows", v.Node.NodeType, v.Node.ActualRows),
		Title: tooltip(v),
		Color: NodeColor(v.Node, &v.Diagnosis, s.executionTime),
		Level: v.Depth,
		Shape: "box",
	})
	if v.ParentID != analyzer.NoParent {
		s.edges = append(s.edges, graphEdge{From: int(v.ParentID), To: int(v.ID)})
	}
	return nil
}

// NodeColor escalates with the node's share of execution time; any alert
// overrides the time-based color.
func NodeColor(node *plan.PlanNode, diag *analyzer.Diagnosis, executionTime float64) string {
	if diag.HasAlerts() {
		return ColorAlert
	}
	color := ColorBaseline
	if executionTime > 0 {
		if node.ActualTotalTime > executionTime*WarmTimeShare {
			color = ColorWarm
		}
		if node.ActualTotalTime > executionTime*HotTimeShare {
			color = ColorHot
		}
	}
	return color
}

func tooltip(v analyzer.Visit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nTime: %.2f ms\nRows: %d", v.Node.Label(), v.Node.ActualTotalTime, v.Node.ActualRows)
	if len(v.Diagnosis.Alerts) > 0 {
		b.WriteString("\nWarnings:")
		for _, a := range v.Diagnosis.Alerts {
			b.WriteString("\n- " + a.Message)
		}
	}
	return b.String()
}

func (s *GraphSink) Render(w io.Writer) error {
	tpl, err := template.New("graph").Parse(graphTemplate)
	if err != nil {
		return fmt.Errorf("graph render: compile template: %w", err)
	}
	data := struct {
		Title string
		Nodes []graphNode
		Edges []graphEdge
	}{
		Title: s.title,
		Nodes: s.nodes,
		Edges: s.edges,
	}
	if data.Nodes == nil {
		data.Nodes = []graphNode{}
	}
	if data.Edges == nil {
		data.Edges = []graphEdge{}
	}
	if err := tpl.Execute(w, data); err != nil {
		return fmt.Errorf("graph render: execute template: %w", err)
	}
	return nil
}

const graphTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"></script>
<style>
  body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; }
  h1 { font-size: 1.1rem; margin: 12px 16px; }
  #plan { width: 100%; height: 900px; border-top: 1px solid #ddd; }
  .vis-tooltip { white-space: pre-line; font-family: monospace; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div id="plan"></div>
<script>
  const nodes = new vis.DataSet({{.Nodes}});
  const edges = new vis.DataSet({{.Edges}});
  const options = {
    layout: {
      hierarchical: {
        enabled: true,
        direction: "UD",
        sortMethod: "directed",
        levelSeparation: 150,
        nodeSpacing: 200,
        treeSpacing: 300
      }
    },
    physics: { enabled: false },
    interaction: { hover: true },
    edges: { arrows: { to: { enabled: true } } }
  };
  new vis.Network(document.getElementById("plan"), { nodes, edges }, options);
</script>
</body>
</html>
`
