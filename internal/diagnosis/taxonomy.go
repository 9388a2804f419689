package diagnosis

// PatternInfo describes one error pattern.
type PatternInfo struct {
	Pattern  Pattern
	Category Category
	Label    string
}

// taxonomy lists every pattern in display order.
var taxonomy = []PatternInfo{
	{PatternSyntaxError, CategoryCorrectness, "Syntax error"},
	{PatternTypeError, CategoryCorrectness, "Type error"},
	{PatternNullPointer, CategoryCorrectness, "Null or missing value"},
	{PatternIndexError, CategoryCorrectness, "Index out of range"},
	{PatternTimeComplexity, CategoryPerformance, "Time complexity too high"},
	{PatternBoundaryCondition, CategoryCompleteness, "Boundary condition"},
	{PatternEdgeCaseMissing, CategoryCompleteness, "Missing edge case"},
	{PatternDataStructureMisuse, CategoryCorrectness, "Data structure misuse"},
	{PatternAlgorithmChoice, CategoryPerformance, "Algorithm choice"},
	{PatternWrongApproach, CategoryCorrectness, "Wrong approach"},
	{PatternLogicError, CategoryCorrectness, "Logic error"},
	{PatternOther, CategoryOther, "Other"},
}

var registry map[Pattern]*PatternInfo

func init() {
	registry = make(map[Pattern]*PatternInfo, len(taxonomy))
	for i := range taxonomy {
		registry[taxonomy[i].Pattern] = &taxonomy[i]
	}
}

// Lookup returns the pattern's description, or nil for unknown patterns.
func Lookup(p Pattern) *PatternInfo {
	return registry[p]
}

// CategoryOf returns the category of p. Unknown patterns map to
// CategoryOther.
func CategoryOf(p Pattern) Category {
	if info := registry[p]; info != nil {
		return info.Category
	}
	return CategoryOther
}

// AllPatterns returns every pattern in display order.
func AllPatterns() []PatternInfo {
	out := make([]PatternInfo, len(taxonomy))
	copy(out, taxonomy)
	return out
}
