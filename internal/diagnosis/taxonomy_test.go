package diagnosis

import "testing"

func TestAllPatterns_Count(t *testing.T) {
	all := AllPatterns()
	if len(all) != 12 {
		t.Errorf("got %d patterns, want 12", len(all))
	}
	for _, info := range all {
		if info.Label == "" {
			t.Errorf("pattern %s has no label", info.Pattern)
		}
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		pattern Pattern
		want    Category
	}{
		{PatternTimeComplexity, CategoryPerformance},
		{PatternAlgorithmChoice, CategoryPerformance},
		{PatternEdgeCaseMissing, CategoryCompleteness},
		{PatternBoundaryCondition, CategoryCompleteness},
		{PatternLogicError, CategoryCorrectness},
		{PatternWrongApproach, CategoryCorrectness},
		{PatternSyntaxError, CategoryCorrectness},
		{PatternDataStructureMisuse, CategoryCorrectness},
		{PatternNullPointer, CategoryCorrectness},
		{PatternIndexError, CategoryCorrectness},
		{PatternTypeError, CategoryCorrectness},
		{PatternOther, CategoryOther},
		{"made_up", CategoryOther},
	}
	for _, tt := range tests {
		if got := CategoryOf(tt.pattern); got != tt.want {
			t.Errorf("CategoryOf(%s) = %s, want %s", tt.pattern, got, tt.want)
		}
	}
}

func TestLookup(t *testing.T) {
	if info := Lookup(PatternIndexError); info == nil || info.Label != "Index out of range" {
		t.Errorf("Lookup(index_error) = %+v", info)
	}
	if info := Lookup("nonexistent"); info != nil {
		t.Errorf("Lookup(nonexistent) = %+v, want nil", info)
	}
}

func TestParseComplexity(t *testing.T) {
	tests := []struct {
		expr string
		want int
	}{
		{"O(1)", ComplexityConstant},
		{"O(log n)", ComplexityLogarithmic},
		{"O(n)", ComplexityLinear},
		{"O(n + m)", ComplexityLinear},
		{"O(V + E)", ComplexityLinear},
		{"O(n log n)", ComplexityLinearithmic},
		{"O(n log(n))", ComplexityLinearithmic},
		{"O(n^2)", ComplexityQuadratic},
		{"O(n²)", ComplexityQuadratic},
		{"O(n*m)", ComplexityQuadratic},
		{"O(n^3)", ComplexityCubic},
		{"O(2^n)", ComplexityExponential},
		{"O(n!)", ComplexityFactorial},
		{"linear", ComplexityUnknown},
		{"", ComplexityUnknown},
	}
	for _, tt := range tests {
		if got := ParseComplexity(tt.expr); got != tt.want {
			t.Errorf("ParseComplexity(%q) = %d, want %d", tt.expr, got, tt.want)
		}
	}
}
