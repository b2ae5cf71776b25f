package analyzer

import (
	"fmt"

	"github.com/jacobarthurs/pgwalk/internal/plan"
)

type Severity int

const (
	Info     Severity = 0
	Warning  Severity = 1
	Critical Severity = 2
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Kind is the stable machine name of a diagnostic.
type Kind string

const (
	KindRowEstimate     Kind = "row_estimate"
	KindDiskSpill       Kind = "disk_spill"
	KindExternalSort    Kind = "external_sort"
	KindHashSpill       Kind = "hash_spill"
	KindNestedLoop      Kind = "nested_loop"
	KindExpensiveNode   Kind = "expensive_node"
	KindIndexSuggestion Kind = "index_suggestion"
)

type Alert struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// FilterStats is computed for nodes that discarded rows through a filter on
// a named relation.
type FilterStats struct {
	TotalRemoved   int64    `json:"total_removed"`
	SelectivityPct float64  `json:"selectivity_pct"`
	Columns        []string `json:"columns,omitempty"`
}

// Metrics are derived from a single node and the query's execution time.
// Pointer fields are nil when the metric does not apply to the node.
type Metrics struct {
	RowEstimateRatio *float64     `json:"row_estimate_ratio,omitempty"`
	SortMemoryMB     *float64     `json:"sort_memory_mb,omitempty"`
	TimeSharePct     *float64     `json:"time_share_pct,omitempty"`
	SharedBlocks     int64        `json:"shared_blocks"`
	SharedHitPct     float64      `json:"shared_hit_pct"`
	Filter           *FilterStats `json:"filter,omitempty"`
	Workers          *int         `json:"workers,omitempty"`
}

type Diagnosis struct {
	Alerts  []Alert `json:"warnings"`
	Metrics Metrics `json:"metrics"`
}

func (d *Diagnosis) HasAlerts() bool {
	return len(d.Alerts) > 0
}

// MaxSeverity returns Info when no alert fired.
func (d *Diagnosis) MaxSeverity() Severity {
	highest := Info
	for _, a := range d.Alerts {
		if a.Severity > highest {
			highest = a.Severity
		}
	}
	return highest
}

func (d *Diagnosis) warn(kind Kind, severity Severity, format string, args ...any) {
	d.Alerts = append(d.Alerts, Alert{
		Kind:     kind,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	})
}

// NodeID identifies a node by its pre-order position; the root is 0.
type NodeID int

// NoParent is the parent id reported for the root node.
const NoParent NodeID = -1

// Visit is what the walker hands to a Sink for each node.
type Visit struct {
	ID        NodeID
	ParentID  NodeID
	Depth     int
	Node      *plan.PlanNode
	Diagnosis Diagnosis
}
