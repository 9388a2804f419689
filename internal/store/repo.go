package store

import (
	"encoding/json"
	"time"
)

// Problem is a coding exercise.
type Problem struct {
	ID          int64
	Title       string
	Description string
	Difficulty  string
	CreatedAt   time.Time
}

// Progress is the stored per-(user, problem) hint state.
type Progress struct {
	ID                  int64
	UserID              int64
	ProblemID           int64
	AttemptsCount       int
	FailedAttemptsCount int
	CurrentHintLevel    int

	// LastActivity is zero when the learner has no recorded activity.
	LastActivity time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AttemptStatus is the outcome of one code submission.
type AttemptStatus string

const (
	AttemptSuccess AttemptStatus = "success"
	AttemptFailed  AttemptStatus = "failed"
)

// Attempt is one code submission with its evaluation. Evaluation holds the
// JSON-encoded attempt evaluation as produced by the hint workflow.
type Attempt struct {
	ID            int64
	UserID        int64
	ProblemID     int64
	Code          string
	Status        AttemptStatus
	Evaluation    json.RawMessage
	ErrorPattern  string
	ErrorCategory string
	CreatedAt     time.Time
}

// Hint is generated hint content. Hints belong to a problem; deliveries
// tie them to a user.
type Hint struct {
	ID         int64
	ProblemID  int64
	Content    string
	Level      int
	Type       string
	CreatedAt  time.Time
	Evaluation *HintEvaluation
}

// HintEvaluation holds the five quality scores of one hint, each in [0,1].
type HintEvaluation struct {
	ID                int64
	HintID            int64
	Safety            float64
	Helpfulness       float64
	Quality           float64
	ProgressAlignment float64
	PedagogicalValue  float64
	CreatedAt         time.Time
}

// HintDelivery records that a hint was shown to a user for an attempt.
type HintDelivery struct {
	ID            int64
	HintID        int64
	UserID        int64
	AttemptID     int64
	AutoTriggered bool

	// Duplicate marks a hint delivered even though it repeated the
	// previous one after regeneration.
	Duplicate bool
	CreatedAt time.Time
}

// DeliveredHint is a delivery joined with its hint content.
type DeliveredHint struct {
	DeliveryID    int64
	HintID        int64
	AttemptID     int64
	Content       string
	Level         int
	Type          string
	AutoTriggered bool
	DeliveredAt   time.Time
}

// AttemptedProblem is a problem a user has submitted code for.
// LastAttemptID orders problems by recency.
type AttemptedProblem struct {
	Problem
	LastAttemptID int64
}

// Feedback is a learner's rating of a delivered hint.
type Feedback struct {
	ID        int64
	HintID    int64
	UserID    int64
	Rating    int
	Text      string
	CreatedAt time.Time
}

// LLMRequestEventData captures one generative call.
type LLMRequestEventData struct {
	RequestID    string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// QueryOpts filters LLM event queries.
type QueryOpts struct {
	Limit   int // 0 = unlimited
	Purpose string
	From    time.Time
	To      time.Time
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}
