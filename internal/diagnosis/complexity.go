package diagnosis

import (
	"regexp"
	"strings"
)

// Complexity classes ordered by growth. Unknown is below every class.
const (
	ComplexityUnknown = iota - 1
	ComplexityConstant
	ComplexityLogarithmic
	ComplexityLinear
	ComplexityLinearithmic
	ComplexityQuadratic
	ComplexityCubic
	ComplexityExponential
	ComplexityFactorial
)

var (
	bigORe = regexp.MustCompile(`\bo\(((?:[^()]|\([^()]*\))*)\)`)

	bareExprRe = regexp.MustCompile(`^[0-9nmkvelog^*+!()]+$`)

	slowRe = regexp.MustCompile(`(too slow|time limit|timed? ?out|\btle\b|inefficien|exceeds? (the )?time|takes too long|not efficient enough|quadratic|exponential)`)
)

// ParseComplexity returns the growth class of a big-O expression such as
// "O(n log n)" or "o(n^2)". Anything unrecognized is ComplexityUnknown.
func ParseComplexity(expr string) int {
	s := strings.ToLower(expr)
	s = strings.NewReplacer(" ", "", "²", "^2", "³", "^3", "**", "^", "⋅", "*", "·", "*").Replace(s)
	if m := bigORe.FindStringSubmatch(s); m != nil {
		s = m[1]
	} else if !bareExprRe.MatchString(s) {
		return ComplexityUnknown
	}
	switch {
	case s == "":
		return ComplexityUnknown
	case strings.Contains(s, "!"):
		return ComplexityFactorial
	case strings.Contains(s, "2^"), strings.Contains(s, "^n"), strings.Contains(s, "^m"):
		return ComplexityExponential
	case strings.Contains(s, "^3"), strings.Contains(s, "n*n*n"):
		return ComplexityCubic
	case strings.Contains(s, "^2"), strings.Contains(s, "n*n"), strings.Contains(s, "n*m"),
		strings.Contains(s, "m*n"), s == "nm", s == "mn":
		return ComplexityQuadratic
	case strings.Contains(s, "nlog"), strings.Contains(s, "n*log"), strings.Contains(s, "log(n)*n"):
		return ComplexityLinearithmic
	case strings.Contains(s, "log"):
		return ComplexityLogarithmic
	case s == "1":
		return ComplexityConstant
	case strings.ContainsAny(s, "nmkve"):
		return ComplexityLinear
	}
	return ComplexityUnknown
}

// mentionedComplexities returns the growth class of every big-O
// expression in text, in order of appearance. Expressions qualified as
// space or memory bounds are skipped.
func mentionedComplexities(text string) []int {
	text = strings.ToLower(text)
	var out []int
	for _, loc := range bigORe.FindAllStringIndex(text, -1) {
		rest := strings.TrimLeft(text[loc[1]:], " -")
		if strings.HasPrefix(rest, "space") || strings.HasPrefix(rest, "extra space") ||
			strings.HasPrefix(rest, "memory") || strings.HasPrefix(rest, "auxiliary") {
			continue
		}
		if c := ParseComplexity(text[loc[0]:loc[1]]); c != ComplexityUnknown {
			out = append(out, c)
		}
	}
	return out
}

// ComplexityClassifier flags solutions whose observed complexity exceeds a
// lower bound mentioned in the reason or suggestions, or whose reason
// reports a time limit problem.
type ComplexityClassifier struct{}

func (c *ComplexityClassifier) Name() string { return string(PatternTimeComplexity) }

func (c *ComplexityClassifier) Classify(input *ClassifyInput) (Pattern, bool) {
	if slowRe.MatchString(input.Text) {
		return PatternTimeComplexity, true
	}

	// The first expression in the complexity field is the time bound.
	observed := ComplexityUnknown
	if all := mentionedComplexities(input.Complexity); len(all) > 0 {
		observed = all[0]
	}
	if observed == ComplexityUnknown {
		return "", false
	}
	for _, expected := range mentionedComplexities(input.Text) {
		if expected < observed {
			return PatternTimeComplexity, true
		}
	}
	return "", false
}
