package hints

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

const evaluationSystemPrompt = `You are an experienced programming instructor reviewing a learner's code submission. Judge correctness strictly and explain defects precisely.`

var evaluationPrompt = prompts.NewPromptTemplate(`Problem:
{{.problem}}

Learner's code:
{{.code}}
{{if .signals}}
Last run reported by the editor:
{{.signals}}
{{end}}
Decide whether this code solves the problem correctly. Consider:
1. Logic correctness
2. Edge cases
3. Time and space complexity
4. Code quality

State complexity in big-O notation with the time bound first, e.g. "O(n^2) time, O(1) space".
If a faster bound is achievable, mention it in the reason or suggestions.`,
	[]string{"problem", "code", "signals"})

const generationSystemPrompt = `You are a patient programming tutor. You give hints that move a learner forward without revealing the solution.`

var generationPrompt = prompts.NewPromptTemplate(`Problem:
{{.problem}}

Learner's current code:
{{.code}}

Learner progress:
- Total attempts: {{.attempts}}
- Failed attempts: {{.failed}}
- Time since last attempt: {{.elapsed}} seconds

Assessment of this attempt:
{{.assessment}}

Previous hints, most recent first:
{{.previous}}
{{if .history}}
From the learner's own history:
{{.history}}
{{end}}
Hint level: {{.level}} of 5
Hint type: {{.hint_type}} ({{.type_guidance}})
{{if .avoid}}
Your last hint repeated the previous one word for word. Approach it from a different angle this time.
{{end}}
Write one hint that:
1. Does not give away the solution or write the code for them
2. Fits the hint level and type above
3. Builds on the previous hints instead of repeating them
4. Refers to their current code and approach

Lower levels stay conceptual; higher levels get more specific.
Reply with the hint text only, no headings or formatting.`,
	[]string{"problem", "code", "attempts", "failed", "elapsed", "assessment", "previous", "history", "level", "hint_type", "type_guidance", "avoid"})

const scoringSystemPrompt = `You are reviewing hints written for programming learners. Score each criterion from 0 (ineffective) to 1 (ideal).`

var scoringPrompt = prompts.NewPromptTemplate(`Problem:
{{.problem}}

Learner's code:
{{.code}}

Learner progress:
- Total attempts: {{.attempts}}
- Failed attempts: {{.failed}}
- Hint level: {{.level}} of 5

Previous hints, most recent first:
{{.previous}}

Hint to evaluate:
{{.hint}}

Score the hint on safety (does not reveal the solution), helpfulness, quality, progress alignment and pedagogical value.`,
	[]string{"problem", "code", "attempts", "failed", "level", "previous", "hint"})

var typeGuidance = map[HintType]string{
	HintConceptual:     "point at the underlying idea or concept",
	HintApproach:       "suggest a strategy or algorithm family",
	HintImplementation: "point at how to structure the code",
	HintDebug:          "point at the specific defect in their code",
	HintNone:           "the attempt passed; suggest a refinement",
}

func formatSignals(s *AttemptSignals) string {
	if s.empty() {
		return ""
	}
	var b strings.Builder
	if s.Status != "" {
		fmt.Fprintf(&b, "- Status: %s\n", s.Status)
	}
	if s.Error != "" {
		fmt.Fprintf(&b, "- Error: %s\n", s.Error)
	}
	if s.TestsTotal > 0 {
		fmt.Fprintf(&b, "- Tests passed: %d/%d\n", s.TestsPassed, s.TestsTotal)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatPrevious numbers prior hints, most recent first. Returns "None"
// when there are none.
func formatPrevious(prior []string) string {
	if len(prior) == 0 {
		return "None"
	}
	var b strings.Builder
	for i, h := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, h)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatAssessment(e *AttemptEvaluation) string {
	var b strings.Builder
	if e.Success {
		b.WriteString("The code passes.")
	} else {
		b.WriteString("The code fails.")
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, " %s", e.Reason)
	}
	if e.Pattern != "" && e.Pattern != "other" {
		fmt.Fprintf(&b, "\nDetected error pattern: %s (%s)", e.Pattern, e.Category)
	}
	return b.String()
}
