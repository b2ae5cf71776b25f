package analyzer

import (
	"strings"

	"github.com/jacobarthurs/pgwalk/internal/plan"
)

// EvalContext is the state shared by every node of one query: the
// thresholds in force and the query's total execution time.
type EvalContext struct {
	Thresholds    Thresholds
	ExecutionTime float64
}

// A Rule inspects one node and records metrics or alerts on d. Rules must be
// total over defaulted fields and must not touch any node other than node.
type Rule func(node *plan.PlanNode, ec EvalContext, d *Diagnosis)

var defaultRules = []Rule{
	checkRowEstimate,
	checkDiskSpill,
	checkExternalSort,
	checkHashSpill,
	checkNestedLoopRows,
	checkExpensiveNode,
	computeBufferEfficiency,
	checkFilterSelectivity,
	countWorkers,
}

type RuleSet struct {
	thresholds Thresholds
	rules      []Rule
}

func NewRuleSet(t Thresholds) *RuleSet {
	return &RuleSet{thresholds: t, rules: defaultRules}
}

func (rs *RuleSet) Thresholds() Thresholds {
	return rs.thresholds
}

// Diagnose runs every rule against node in a fixed order.
func (rs *RuleSet) Diagnose(node *plan.PlanNode, executionTime float64) Diagnosis {
	ec := EvalContext{Thresholds: rs.thresholds, ExecutionTime: executionTime}
	var d Diagnosis
	for _, rule := range rs.rules {
		rule(node, ec, &d)
	}
	return d
}

func checkRowEstimate(node *plan.PlanNode, ec EvalContext, d *Diagnosis) {
	if node.PlanRows <= 0 || node.ActualRows <= 0 {
		return
	}
	ratio := float64(node.ActualRows) / float64(node.PlanRows)
	d.Metrics.RowEstimateRatio = &ratio

	if ratio > ec.Thresholds.RowEstimateHigh || ratio < ec.Thresholds.RowEstimateLow {
		d.warn(KindRowEstimate, Warning, "Bad row estimation (ratio=%.2f)", ratio)
	}
}

func checkDiskSpill(node *plan.PlanNode, ec EvalContext, d *Diagnosis) {
	if node.TempWrittenBlocks <= 0 {
		return
	}
	d.warn(KindDiskSpill, Warning, "Disk spill detected (%d temp blocks written)", node.TempWrittenBlocks)
}

func checkExternalSort(node *plan.PlanNode, ec EvalContext, d *Diagnosis) {
	if node.SortMethod != "external merge" {
		return
	}
	requiredMB := float64(node.SortSpaceUsed) / kbPerMB
	d.Metrics.SortMemoryMB = &requiredMB
	d.warn(KindExternalSort, Critical, "Disk sort (~%.0f MB work_mem needed)", requiredMB)
}

func checkHashSpill(node *plan.PlanNode, ec EvalContext, d *Diagnosis) {
	if node.HashBatches <= 1 {
		return
	}
	severity := Warning
	if node.HashBatches > ec.Thresholds.HashBatchesCritical {
		severity = Critical
	}
	d.warn(KindHashSpill, severity, "Hash spill (%d batches, increase work_mem)", node.HashBatches)
}

func checkNestedLoopRows(node *plan.PlanNode, ec EvalContext, d *Diagnosis) {
	if node.NodeType != "Nested Loop" {
		return
	}
	if node.ActualRows <= ec.Thresholds.NestedLoopMaxRows {
		return
	}
	d.warn(KindNestedLoop, Warning, "Nested Loop on large dataset (%d rows)", node.ActualRows)
}

func checkExpensiveNode(node *plan.PlanNode, ec EvalContext, d *Diagnosis) {
	if ec.ExecutionTime <= 0 {
		return
	}
	share := node.ActualTotalTime / ec.ExecutionTime * 100
	d.Metrics.TimeSharePct = &share

	if node.ActualTotalTime > ec.Thresholds.ExpensiveNodeShare*ec.ExecutionTime {
		d.warn(KindExpensiveNode, Critical, "Very expensive node (%.1f%% of execution time)", share)
	}
}

func computeBufferEfficiency(node *plan.PlanNode, ec EvalContext, d *Diagnosis) {
	d.Metrics.SharedBlocks, d.Metrics.SharedHitPct = SharedHitPercentage(node.SharedHitBlocks, node.SharedReadBlocks)
}

// SharedHitPercentage returns the total shared block count and the share of
// it served from cache. With no recorded block activity the percentage is 0.
func SharedHitPercentage(hit, read int64) (int64, float64) {
	if hit < 0 {
		hit = 0
	}
	if read < 0 {
		read = 0
	}
	total := hit + read
	if total == 0 {
		return 0, 0
	}
	return total, float64(hit) / float64(total) * 100
}

func checkFilterSelectivity(node *plan.PlanNode, ec EvalContext, d *Diagnosis) {
	if node.RowsRemovedByFilter <= 0 || node.RelationName == "" {
		return
	}

	loops := max(node.ActualLoops, 1)
	stats := FilterStats{
		TotalRemoved: node.RowsRemovedByFilter * loops,
		Columns:      ExtractFilterColumns(node.Filter),
	}
	if stats.TotalRemoved > 0 {
		stats.SelectivityPct = float64(node.ActualRows) / float64(stats.TotalRemoved) * 100
	}
	d.Metrics.Filter = &stats

	policy := ec.Thresholds.IndexPolicy
	if policy.ScanNodesOnly && !node.IsScan() {
		return
	}
	if stats.SelectivityPct >= ec.Thresholds.SelectivityMaxPct {
		return
	}
	if stats.TotalRemoved+node.ActualRows <= policy.MinCombinedRows {
		return
	}

	d.warn(KindIndexSuggestion, Warning, "Consider index on %s(%s): %d rows were removed by the filter",
		node.RelationName, strings.Join(stats.Columns, ", "), stats.TotalRemoved)
}

func countWorkers(node *plan.PlanNode, ec EvalContext, d *Diagnosis) {
	if !node.HasWorkers {
		return
	}
	n := len(node.Workers)
	d.Metrics.Workers = &n
}
