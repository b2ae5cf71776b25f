package plan

import (
	"fmt"
	"strings"
)

// DefaultNodeType is used when a node carries no usable "Node Type".
const DefaultNodeType = "Unknown"

// PlanNode is one operator of an EXPLAIN (FORMAT JSON, ANALYZE) tree. Every
// field holds its documented default when the source omitted it or carried
// a value of the wrong type; rules never check for presence.
type PlanNode struct {
	// Core identity
	NodeType           string `json:"Node Type"`
	ParentRelationship string `json:"Parent Relationship,omitempty"`

	// Estimates vs actuals
	StartupCost       float64 `json:"Startup Cost"`
	TotalCost         float64 `json:"Total Cost"`
	PlanRows          int64   `json:"Plan Rows"`
	ActualStartupTime float64 `json:"Actual Startup Time,omitempty"`
	ActualTotalTime   float64 `json:"Actual Total Time,omitempty"`
	ActualRows        int64   `json:"Actual Rows,omitempty"`
	ActualLoops       int64   `json:"Actual Loops,omitempty"`

	// Relation/index info
	Schema       string   `json:"Schema,omitempty"`
	RelationName string   `json:"Relation Name,omitempty"`
	Alias        string   `json:"Alias,omitempty"`
	IndexName    string   `json:"Index Name,omitempty"`
	Output       []string `json:"Output,omitempty"`

	// Conditions
	Filter              string `json:"Filter,omitempty"`
	RowsRemovedByFilter int64  `json:"Rows Removed by Filter,omitempty"`

	// Sort
	SortMethod    string `json:"Sort Method,omitempty"`
	SortSpaceUsed int64  `json:"Sort Space Used,omitempty"`
	SortSpaceType string `json:"Sort Space Type,omitempty"`

	// Hash
	HashBatches     int   `json:"Hash Batches,omitempty"`
	PeakMemoryUsage int64 `json:"Peak Memory Usage,omitempty"`

	// Buffers
	SharedHitBlocks   int64 `json:"Shared Hit Blocks,omitempty"`
	SharedReadBlocks  int64 `json:"Shared Read Blocks,omitempty"`
	TempReadBlocks    int64 `json:"Temp Read Blocks,omitempty"`
	TempWrittenBlocks int64 `json:"Temp Written Blocks,omitempty"`

	// Parallel query. Workers entries are kept opaque; only the count is used.
	WorkersPlanned  int   `json:"Workers Planned,omitempty"`
	WorkersLaunched int   `json:"Workers Launched,omitempty"`
	Workers         []any `json:"Workers,omitempty"`
	HasWorkers      bool  `json:"-"`

	// Children
	Plans []PlanNode `json:"Plans,omitempty"`
}

// QueryResult is the first element of the top-level EXPLAIN JSON array.
type QueryResult struct {
	Plan          PlanNode `json:"Plan"`
	PlanningTime  float64  `json:"Planning Time,omitempty"`
	ExecutionTime float64  `json:"Execution Time,omitempty"`
}

// Label renders "Seq Scan on orders (o)" style names shared by all outputs.
func (n *PlanNode) Label() string {
	if n.RelationName != "" {
		if n.Alias != "" && n.Alias != n.RelationName {
			return fmt.Sprintf("%s on %s (%s)", n.NodeType, n.RelationName, n.Alias)
		}
		return fmt.Sprintf("%s on %s", n.NodeType, n.RelationName)
	}
	return n.NodeType
}

// IsScan reports whether the node reads a relation directly.
func (n *PlanNode) IsScan() bool {
	return strings.HasSuffix(n.NodeType, "Scan")
}

// CountNodes returns the number of nodes in the subtree rooted at n.
func (n *PlanNode) CountNodes() int {
	count := 1
	for i := range n.Plans {
		count += n.Plans[i].CountNodes()
	}
	return count
}
