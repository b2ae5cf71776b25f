package analyzer

import (
	"github.com/jacobarthurs/pgwalk/internal/logging"
	"github.com/jacobarthurs/pgwalk/internal/plan"
)

// Sink receives one Visit per plan node, parents before children.
type Sink interface {
	Emit(v Visit) error
}

// Walk visits every node of result once, pre-order, in the order children
// appear in the plan, and hands each diagnosed node to sink. The plan is not
// modified; only sink errors are returned.
func Walk(result *plan.QueryResult, rules *RuleSet, sink Sink) error {
	w := &walker{
		rules:         rules,
		sink:          sink,
		executionTime: result.ExecutionTime,
	}
	return w.walkTree(&result.Plan, NoParent, 0)
}

type walker struct {
	rules         *RuleSet
	sink          Sink
	executionTime float64
	nextID        NodeID
}

func (w *walker) walkTree(node *plan.PlanNode, parent NodeID, depth int) error {
	id := w.nextID
	w.nextID++

	diag := w.rules.Diagnose(node, w.executionTime)

	logging.Debug().
		Int("id", int(id)).
		Int("depth", depth).
		Str("node", node.Label()).
		Int("alerts", len(diag.Alerts)).
		Msg("visited plan node")

	if err := w.sink.Emit(Visit{
		ID:        id,
		ParentID:  parent,
		Depth:     depth,
		Node:      node,
		Diagnosis: diag,
	}); err != nil {
		return err
	}

	for i := range node.Plans {
		if err := w.walkTree(&node.Plans[i], id, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Collector is a Sink that keeps every visit in order.
type Collector struct {
	Visits []Visit
}

func (c *Collector) Emit(v Visit) error {
	c.Visits = append(c.Visits, v)
	return nil
}

// Analyze walks result into a Collector and returns the visits.
func Analyze(result *plan.QueryResult, rules *RuleSet) []Visit {
	var c Collector
	// Collector never fails.
	_ = Walk(result, rules, &c)
	return c.Visits
}
