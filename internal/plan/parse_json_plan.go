package plan

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/jacobarthurs/pgwalk/internal/logging"
)

// MalformedInputError reports an EXPLAIN document whose top-level shape
// leaves no root node to walk.
type MalformedInputError struct {
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed EXPLAIN input: %s: %v", e.Reason, e.Err)
	}
	return "malformed EXPLAIN input: " + e.Reason
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// ParseJSONPlan decodes EXPLAIN (FORMAT JSON) output. Only the top-level
// structure is validated; node fields that are missing or mistyped fall back
// to their defaults because planner output varies across versions.
func ParseJSONPlan(data []byte) (QueryResult, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return QueryResult{}, &MalformedInputError{Reason: "invalid JSON", Err: err}
	}

	items, ok := doc.([]any)
	if !ok {
		return QueryResult{}, &MalformedInputError{Reason: "top level is not an array"}
	}
	if len(items) == 0 {
		return QueryResult{}, &MalformedInputError{Reason: "empty EXPLAIN output"}
	}

	wrapper, ok := items[0].(map[string]any)
	if !ok {
		return QueryResult{}, &MalformedInputError{Reason: "first element is not an object"}
	}

	rawPlan, ok := wrapper["Plan"]
	if !ok {
		return QueryResult{}, &MalformedInputError{Reason: `missing "Plan" key`}
	}
	planObj, ok := rawPlan.(map[string]any)
	if !ok {
		return QueryResult{}, &MalformedInputError{Reason: `"Plan" is not an object`}
	}

	result := QueryResult{
		Plan:          normalizeNode(planObj),
		PlanningTime:  floatField(wrapper, "Planning Time", 0),
		ExecutionTime: floatField(wrapper, "Execution Time", 0),
	}

	logging.Debug().
		Int("nodes", result.Plan.CountNodes()).
		Float64("execution_time_ms", result.ExecutionTime).
		Msg("parsed EXPLAIN plan")

	return result, nil
}

func normalizeNode(raw map[string]any) PlanNode {
	node := PlanNode{
		NodeType:           stringField(raw, "Node Type", DefaultNodeType),
		ParentRelationship: stringField(raw, "Parent Relationship", ""),

		StartupCost:       floatField(raw, "Startup Cost", 0),
		TotalCost:         floatField(raw, "Total Cost", 0),
		PlanRows:          intField(raw, "Plan Rows", 0),
		ActualStartupTime: floatField(raw, "Actual Startup Time", 0),
		ActualTotalTime:   floatField(raw, "Actual Total Time", 0),
		ActualRows:        intField(raw, "Actual Rows", 0),
		ActualLoops:       intField(raw, "Actual Loops", 1),

		Schema:       stringField(raw, "Schema", ""),
		RelationName: stringField(raw, "Relation Name", ""),
		Alias:        stringField(raw, "Alias", ""),
		IndexName:    stringField(raw, "Index Name", ""),
		Output:       stringsField(raw, "Output"),

		Filter:              stringField(raw, "Filter", ""),
		RowsRemovedByFilter: intField(raw, "Rows Removed by Filter", 0),

		SortMethod:    stringField(raw, "Sort Method", ""),
		SortSpaceUsed: intField(raw, "Sort Space Used", 0),
		SortSpaceType: stringField(raw, "Sort Space Type", ""),

		HashBatches:     int(intField(raw, "Hash Batches", 1)),
		PeakMemoryUsage: intField(raw, "Peak Memory Usage", 0),

		SharedHitBlocks:   intField(raw, "Shared Hit Blocks", 0),
		SharedReadBlocks:  intField(raw, "Shared Read Blocks", 0),
		TempReadBlocks:    intField(raw, "Temp Read Blocks", 0),
		TempWrittenBlocks: intField(raw, "Temp Written Blocks", 0),

		WorkersPlanned:  int(intField(raw, "Workers Planned", 0)),
		WorkersLaunched: int(intField(raw, "Workers Launched", 0)),
	}

	if workers, ok := raw["Workers"].([]any); ok {
		node.Workers = workers
		node.HasWorkers = true
	}

	if children, ok := raw["Plans"].([]any); ok {
		for _, c := range children {
			child, ok := c.(map[string]any)
			if !ok {
				continue
			}
			node.Plans = append(node.Plans, normalizeNode(child))
		}
	}

	return node
}

func stringField(raw map[string]any, key, def string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return def
}

func floatField(raw map[string]any, key string, def float64) float64 {
	if f, ok := raw[key].(float64); ok {
		return f
	}
	return def
}

func intField(raw map[string]any, key string, def int64) int64 {
	f, ok := raw[key].(float64)
	if !ok || f >= math.MaxInt64 || f <= math.MinInt64 {
		return def
	}
	return int64(f)
}

func stringsField(raw map[string]any, key string) []string {
	items, ok := raw[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
