package analyzer

import (
	"regexp"
	"sort"
)

var comparisonColumnRe = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\s*(?:>=|<=|<>|!=|=|>|<)`)

// ExtractFilterColumns returns the distinct identifiers that appear directly
// before a comparison operator in cond, sorted. It is a heuristic, not a SQL
// parser: any text is accepted and unmatched input yields nil.
func ExtractFilterColumns(cond string) []string {
	if cond == "" {
		return nil
	}
	seen := make(map[string]bool)
	var cols []string
	for _, m := range comparisonColumnRe.FindAllStringSubmatch(cond, -1) {
		col := m[1]
		if !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)
	return cols
}
