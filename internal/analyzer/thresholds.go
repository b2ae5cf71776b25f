package analyzer

import (
	"fmt"
	"strings"
)

const (
	RowEstimateHighRatio = 5.0
	RowEstimateLowRatio  = 0.2

	NestedLoopMaxRows   = 10000
	ExpensiveNodeShare  = 0.6
	HashBatchesCritical = 8

	SelectivityMaxPct = 15.0

	// Combined (removed + returned) row floors for index suggestions. The
	// lenient floor is the default; the strict one also restricts
	// suggestions to scan nodes.
	LenientIndexMinRows = 100000
	StrictIndexMinRows  = 1000000

	kbPerMB = 1024.0
)

type IndexPolicy struct {
	Name            string
	MinCombinedRows int64
	ScanNodesOnly   bool
}

var (
	LenientIndexPolicy = IndexPolicy{Name: "lenient", MinCombinedRows: LenientIndexMinRows}
	StrictIndexPolicy  = IndexPolicy{Name: "strict", MinCombinedRows: StrictIndexMinRows, ScanNodesOnly: true}
)

// IndexPolicyByName accepts "lenient" or "strict"; empty selects lenient.
func IndexPolicyByName(name string) (IndexPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", LenientIndexPolicy.Name:
		return LenientIndexPolicy, nil
	case StrictIndexPolicy.Name:
		return StrictIndexPolicy, nil
	default:
		return IndexPolicy{}, fmt.Errorf("unknown index policy %q: must be \"lenient\" or \"strict\"", name)
	}
}

type Thresholds struct {
	RowEstimateHigh     float64
	RowEstimateLow      float64
	NestedLoopMaxRows   int64
	ExpensiveNodeShare  float64
	HashBatchesCritical int
	SelectivityMaxPct   float64
	IndexPolicy         IndexPolicy
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		RowEstimateHigh:     RowEstimateHighRatio,
		RowEstimateLow:      RowEstimateLowRatio,
		NestedLoopMaxRows:   NestedLoopMaxRows,
		ExpensiveNodeShare:  ExpensiveNodeShare,
		HashBatchesCritical: HashBatchesCritical,
		SelectivityMaxPct:   SelectivityMaxPct,
		IndexPolicy:         LenientIndexPolicy,
	}
}
