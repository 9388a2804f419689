package hints

import (
	"github.com/abhisek/hintly/internal/diagnosis"
	"github.com/abhisek/hintly/internal/progress"
)

// HintType is the kind of guidance a hint gives.
type HintType string

const (
	HintConceptual     HintType = "conceptual"
	HintApproach       HintType = "approach"
	HintImplementation HintType = "implementation"
	HintDebug          HintType = "debug"

	// HintNone marks a successful attempt for which no hint was generated.
	HintNone HintType = "none"
)

// Scores are the five quality criteria of a hint, each in [0, 1].
type Scores struct {
	Safety            float64 `json:"safety"`
	Helpfulness       float64 `json:"helpfulness"`
	Quality           float64 `json:"quality"`
	ProgressAlignment float64 `json:"progress_alignment"`
	PedagogicalValue  float64 `json:"pedagogical_value"`
}

// AttemptEvaluation is the model's evaluation of a submission plus the
// locally assigned error pattern.
type AttemptEvaluation struct {
	diagnosis.Evaluation
	diagnosis.Result
}

// ProblemData is optional metadata used to create a problem that does not
// exist yet.
type ProblemData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

// AttemptSignals are optional details about the learner's last run that
// the client observed, such as a failing test.
type AttemptSignals struct {
	Status      string `json:"last_attempt_status,omitempty"`
	Error       string `json:"last_error,omitempty"`
	TestsPassed int    `json:"tests_passed,omitempty"`
	TestsTotal  int    `json:"tests_total,omitempty"`
}

func (s *AttemptSignals) empty() bool {
	return s == nil || (s.Status == "" && s.Error == "" && s.TestsTotal == 0)
}

// HintRequest asks for a hint on the learner's current code.
type HintRequest struct {
	UserID    int64
	ProblemID int64
	Code      string
	Problem   *ProblemData
}

// HintView is the delivered hint as returned to callers.
type HintView struct {
	ID      int64    `json:"id"`
	Content string   `json:"content"`
	Level   int      `json:"level"`
	Type    HintType `json:"type"`
}

// Result is the outcome of one hint request.
type Result struct {
	Hint              *HintView         `json:"hint"`
	Evaluation        *Scores           `json:"evaluation"`
	AttemptID         int64             `json:"attempt_id"`
	AttemptEvaluation AttemptEvaluation `json:"attempt_evaluation"`
	UserProgress      progress.Snapshot `json:"user_progress"`

	DedupRetried       bool `json:"dedup_retried"`
	DuplicateDelivered bool `json:"duplicate_delivered"`
	AutoTriggered      bool `json:"auto_triggered"`
	RAGUsed            bool `json:"rag_used"`
}

// AutoTriggerRequest polls whether the learner is stuck. The optional
// signals describe their last run.
type AutoTriggerRequest struct {
	UserID    int64
	ProblemID int64
	Code      string
	Signals   AttemptSignals
}

// AutoTriggerResult carries the hint result when a hint was triggered, or
// only the progress snapshot otherwise.
type AutoTriggerResult struct {
	Triggered    bool              `json:"triggered"`
	Result       *Result           `json:"result,omitempty"`
	UserProgress progress.Snapshot `json:"user_progress"`
}
