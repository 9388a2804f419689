// Package diagnosis maps attempt evaluations onto a closed taxonomy of error
// patterns with rule-based classifiers.
package diagnosis

import (
	"regexp"
	"strings"
)

// Classifier is one rule. It reports the pattern it recognizes in the
// input, or false if it does not apply.
type Classifier interface {
	Name() string
	Classify(input *ClassifyInput) (Pattern, bool)
}

// ClassifyInput is the lowercased text of an evaluation.
type ClassifyInput struct {
	// Text joins the reason and suggestions.
	Text string

	// Complexity is the evaluation's complexity estimate.
	Complexity string
}

// NewClassifyInput prepares an evaluation for the classifiers.
func NewClassifyInput(e *Evaluation) *ClassifyInput {
	parts := make([]string, 0, 1+len(e.Suggestions))
	parts = append(parts, e.Reason)
	parts = append(parts, e.Suggestions...)
	return &ClassifyInput{
		Text:       strings.ToLower(strings.Join(parts, "\n")),
		Complexity: strings.ToLower(e.Complexity),
	}
}

// DefaultClassifiers returns classifiers in priority order. Concrete
// runtime failures come first since they name the defect directly; the
// generic logic rule is last.
func DefaultClassifiers() []Classifier {
	return []Classifier{
		keywords(PatternSyntaxError, `syntax ?error`, `indentation`, `unexpected (token|indent|eof)`,
			`(does not|doesn't|won't|will not|fails to) compile`, `compil(e|ation) error`, `missing (colon|semicolon|parenthes)`,
			`unbalanced (bracket|parenthes)`, `invalid syntax`),
		keywords(PatternTypeError, `type ?error`, `type mismatch`, `incompatible type`, `cannot convert`,
			`unsupported operand`, `not callable`, `not subscriptable`, `wrong type`),
		keywords(PatternNullPointer, `null ?pointer`, `nil pointer`, `null reference`, `none ?type`,
			`attribute ?error`, `dereferenc`, `undefined is not`, `is (null|none|nil)\b`),
		keywords(PatternIndexError, `index ?error`, `index out of`, `out of (range|bounds)`, `array ?index`,
			`list index`, `key ?error`, `segmentation fault`),
		&ComplexityClassifier{},
		keywords(PatternBoundaryCondition, `off[- ]by[- ]one`, `boundar`, `loop (bound|limit|condition)`,
			`termination condition`, `inclusive`, `exclusive`, `(first|last) (element|index|iteration)`),
		keywords(PatternEdgeCaseMissing, `edge ?case`, `corner ?case`, `empty (input|array|list|string|tree|graph)`,
			`single (element|node|character)`, `negative (number|value|input)`, `no solution`, `zero`, `duplicates?\b`),
		keywords(PatternDataStructureMisuse, `data structure`, `(use|using|with) an? (hash ?map|hash ?set|set|dict(ionary)?|map|heap|stack|queue|deque)`,
			`(hash ?map|dictionary|priority queue) (would|could|instead)`, `wrong (container|collection)`),
		keywords(PatternAlgorithmChoice, `brute[- ]force`, `dynamic programming`, `memoi[sz]`, `binary search`,
			`two[- ]pointer`, `sliding window`, `greedy`, `(different|better|more efficient) algorithm`, `divide and conquer`),
		keywords(PatternWrongApproach, `wrong approach`, `approach is (incorrect|wrong|flawed)`, `misunderst`,
			`(does not|doesn't) (solve|address) the problem`, `different approach`, `rethink`, `not what the problem asks`),
		keywords(PatternLogicError, `logic`, `wrong (answer|result|output|value)`, `incorrect (result|output|answer|value|condition|calculation)`,
			`returns? the wrong`, `fails? (the )?test`, `condition`),
	}
}

// RunClassifiers executes classifiers in order and returns the first
// match, or ("", "") if no rules apply.
func RunClassifiers(classifiers []Classifier, input *ClassifyInput) (Pattern, string) {
	for _, c := range classifiers {
		if p, ok := c.Classify(input); ok {
			return p, c.Name()
		}
	}
	return "", ""
}

var defaultClassifiers = DefaultClassifiers()

// Classify assigns an error pattern and category to e. Evaluations no
// rule recognizes fall into the other/other bucket. Classify never fails.
func Classify(e *Evaluation) Result {
	if e == nil {
		return Result{Pattern: PatternOther, Category: CategoryOther}
	}
	p, rule := RunClassifiers(defaultClassifiers, NewClassifyInput(e))
	if p == "" {
		return Result{Pattern: PatternOther, Category: CategoryOther}
	}
	return Result{Pattern: p, Category: CategoryOf(p), Rule: rule}
}

// KeywordClassifier matches any of its expressions against the evaluation
// text.
type KeywordClassifier struct {
	pattern Pattern
	re      *regexp.Regexp
}

func keywords(p Pattern, exprs ...string) *KeywordClassifier {
	return &KeywordClassifier{
		pattern: p,
		re:      regexp.MustCompile(`(` + strings.Join(exprs, `|`) + `)`),
	}
}

func (k *KeywordClassifier) Name() string { return string(k.pattern) }

func (k *KeywordClassifier) Classify(input *ClassifyInput) (Pattern, bool) {
	if k.re.MatchString(input.Text) {
		return k.pattern, true
	}
	return "", false
}
