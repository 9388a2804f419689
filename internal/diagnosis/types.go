package diagnosis

// Pattern is an error pattern from the closed taxonomy.
type Pattern string

const (
	PatternTimeComplexity      Pattern = "time_complexity"
	PatternLogicError          Pattern = "logic_error"
	PatternEdgeCaseMissing     Pattern = "edge_case_missing"
	PatternWrongApproach       Pattern = "wrong_approach"
	PatternSyntaxError         Pattern = "syntax_error"
	PatternBoundaryCondition   Pattern = "boundary_condition"
	PatternDataStructureMisuse Pattern = "data_structure_misuse"
	PatternAlgorithmChoice     Pattern = "algorithm_choice"
	PatternNullPointer         Pattern = "null_pointer"
	PatternIndexError          Pattern = "index_error"
	PatternTypeError           Pattern = "type_error"
	PatternOther               Pattern = "other"
)

// Category groups error patterns.
type Category string

const (
	CategoryPerformance  Category = "performance"
	CategoryCorrectness  Category = "correctness"
	CategoryCompleteness Category = "completeness"
	CategoryOther        Category = "other"
)

// Evaluation is the structured assessment of one code submission.
type Evaluation struct {
	Success     bool     `json:"success"`
	Reason      string   `json:"reason"`
	Complexity  string   `json:"complexity"`
	EdgeCases   []string `json:"edge_cases"`
	CodeQuality string   `json:"code_quality"`
	Suggestions []string `json:"suggestions"`
}

// Result is the classification of an evaluation.
type Result struct {
	Pattern  Pattern  `json:"error_pattern"`
	Category Category `json:"error_category"`

	// Rule names the classifier that matched, empty for the default bucket.
	Rule string `json:"-"`
}
