package hints

import "github.com/abhisek/hintly/internal/llm"

// AttemptEvaluationSchema is the structured output of the attempt
// evaluation stage. Error patterns are assigned locally, not by the model.
var AttemptEvaluationSchema = &llm.Schema{
	Name:        "attempt-evaluation",
	Description: "Evaluation of a code submission against the problem",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"success": map[string]any{
				"type":        "boolean",
				"description": "Whether the code correctly solves the problem",
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "Why the code is or is not correct, naming the specific defect",
			},
			"complexity": map[string]any{
				"type":        "string",
				"description": "Time and space complexity in big-O notation, e.g. \"O(n^2) time, O(1) space\"",
			},
			"edge_cases": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Edge cases the code misses or handles incorrectly",
			},
			"code_quality": map[string]any{
				"type":        "string",
				"description": "Short assessment of readability and structure",
			},
			"suggestions": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Concrete improvements, without giving away the full solution",
			},
		},
		"required":             []any{"success", "reason", "complexity", "edge_cases", "code_quality", "suggestions"},
		"additionalProperties": false,
	},
}

func score(desc string) map[string]any {
	return map[string]any{
		"type":        "number",
		"minimum":     0,
		"maximum":     1,
		"description": desc,
	}
}

// HintEvaluationSchema is the structured output of the hint scoring stage.
var HintEvaluationSchema = &llm.Schema{
	Name:        "hint-evaluation",
	Description: "Quality scores of a generated hint",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"safety":             score("1 when the hint does not reveal the full solution"),
			"helpfulness":        score("How much the hint moves the learner forward"),
			"quality":            score("Clarity and correctness of the hint"),
			"progress_alignment": score("Fit between the hint and the learner's current progress"),
			"pedagogical_value":  score("How well the hint teaches rather than tells"),
		},
		"required":             []any{"safety", "helpfulness", "quality", "progress_alignment", "pedagogical_value"},
		"additionalProperties": false,
	},
}
