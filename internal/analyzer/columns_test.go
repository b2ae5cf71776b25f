package analyzer

import (
	"reflect"
	"testing"
)

func TestExtractFilterColumns(t *testing.T) {
	tests := []struct {
		name string
		cond string
		want []string
	}{
		{"empty", "", nil},
		{"simple conjunction", "a = 1 AND b > 2", []string{"a", "b"}},
		{"all operators", "a = 1 AND b > 2 AND c < 3 AND d >= 4 AND e <= 5 AND f <> 6 AND g != 7", []string{"a", "b", "c", "d", "e", "f", "g"}},
		{"qualified names", "(o.customer_id = c.id)", []string{"customer_id"}},
		{"right-hand identifiers ignored", "(c.id = o.customer_id)", []string{"id"}},
		{"no whitespace", "(amount>=100)", []string{"amount"}},
		{"duplicates collapse", "(x = 1) OR (x = 2)", []string{"x"}},
		{"no comparison", "(active IS TRUE)", nil},
		{"garbage", "))((!!@@##", nil},
		{"unterminated literal", "(name = 'abc", []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFilterColumns(tt.cond)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractFilterColumns(%q) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func TestExtractFilterColumns_OrderIndependent(t *testing.T) {
	a := ExtractFilterColumns("b > 2 AND a = 1")
	b := ExtractFilterColumns("a = 1 AND b > 2")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected same set regardless of order, got %v and %v", a, b)
	}
	if !reflect.DeepEqual(a, ExtractFilterColumns("b > 2 AND a = 1")) {
		t.Error("expected repeated extraction to be stable")
	}
}
