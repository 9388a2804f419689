package hints

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/hintly/internal/diagnosis"
	"github.com/abhisek/hintly/internal/llm"
	"github.com/abhisek/hintly/internal/logger"
	"github.com/abhisek/hintly/internal/progress"
	"github.com/abhisek/hintly/internal/rag"
	"github.com/abhisek/hintly/internal/store"
)

// Stage names, used in errors, logs and metrics.
const (
	StageEvaluate = "attempt evaluation"
	StageSelect   = "hint selection"
	StageGenerate = "hint generation"
	StageScore    = "hint evaluation"
	StageDedup    = "duplicate avoidance"
)

// Input is everything one pass through the pipeline reads. It is not
// modified by the pipeline.
type Input struct {
	Problem *store.Problem
	Code    string

	// Progress is the learner state after this request was counted and
	// any escalation applied, before the attempt outcome is known.
	Progress progress.Snapshot

	// PriorHints are previously delivered hint texts, most recent first.
	PriorHints []string

	RAG     *rag.Context
	Signals *AttemptSignals
}

// Outcome is the result of a full pass.
type Outcome struct {
	Evaluation AttemptEvaluation
	Selection  Selection

	// Content and Scores are empty when Selection.Skip is set.
	Content string
	Scores  *Scores

	DedupRetried       bool
	DuplicateDelivered bool
}

// pipelineState accumulates stage results. Stages take it by value and
// return the next state.
type pipelineState struct {
	in *Input

	failed  int
	eval    *AttemptEvaluation
	sel     Selection
	content string
	scores  *Scores

	dedupRetried bool
	duplicate    bool
}

type stage struct {
	name string
	run  func(ctx context.Context, st pipelineState) (pipelineState, error)
}

// Orchestrator runs the hint pipeline: evaluate the attempt, select level
// and type, generate a hint, score it, and regenerate once if it repeats
// the previous hint.
type Orchestrator struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

func NewOrchestrator(provider llm.Provider, cfg Config, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{provider: provider, cfg: cfg, log: log.With("component", "hint_pipeline")}
}

func (o *Orchestrator) stages() []stage {
	return []stage{
		{StageEvaluate, o.evaluateStage},
		{StageSelect, o.selectStage},
		{StageGenerate, o.generateStage},
		{StageScore, o.scoreStage},
		{StageDedup, o.dedupStage},
	}
}

// Process runs every stage in order. The first failing stage aborts the
// pass; its error is a *GenerationError.
func (o *Orchestrator) Process(ctx context.Context, in *Input) (*Outcome, error) {
	st := pipelineState{in: in}
	for _, s := range o.stages() {
		start := time.Now()
		next, err := s.run(ctx, st)
		stageDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		st = next
	}
	return &Outcome{
		Evaluation:         *st.eval,
		Selection:          st.sel,
		Content:            st.content,
		Scores:             st.scores,
		DedupRetried:       st.dedupRetried,
		DuplicateDelivered: st.duplicate,
	}, nil
}

// Evaluate runs the attempt evaluation stage on its own and classifies the
// result.
func (o *Orchestrator) Evaluate(ctx context.Context, problem *store.Problem, code string, signals *AttemptSignals) (*AttemptEvaluation, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeAttemptEval)
	userMsg, err := evaluationPrompt.Format(map[string]any{
		"problem": problemText(problem),
		"code":    code,
		"signals": formatSignals(signals),
	})
	if err != nil {
		return nil, &GenerationError{Stage: StageEvaluate, Err: fmt.Errorf("format prompt: %w", err)}
	}

	resp, err := o.provider.Generate(ctx, llm.Request{
		System:      evaluationSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      AttemptEvaluationSchema,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.EvaluationTemperature,
	})
	if err != nil {
		return nil, &GenerationError{Stage: StageEvaluate, Err: err}
	}
	e, err := llm.Decode[diagnosis.Evaluation](resp)
	if err != nil {
		return nil, &GenerationError{Stage: StageEvaluate, Err: err}
	}
	return &AttemptEvaluation{Evaluation: e, Result: diagnosis.Classify(&e)}, nil
}

func (o *Orchestrator) evaluateStage(ctx context.Context, st pipelineState) (pipelineState, error) {
	eval, err := o.Evaluate(ctx, st.in.Problem, st.in.Code, st.in.Signals)
	if err != nil {
		return st, err
	}
	st.eval = eval
	st.failed = st.in.Progress.FailedAttemptsCount + 1
	if eval.Success {
		st.failed = 0
	}
	return st, nil
}

func (o *Orchestrator) selectStage(_ context.Context, st pipelineState) (pipelineState, error) {
	st.sel = SelectHint(st.in.Progress.CurrentHintLevel, st.eval, o.cfg.GenerateOnSuccess)
	return st, nil
}

func (o *Orchestrator) generateStage(ctx context.Context, st pipelineState) (pipelineState, error) {
	if st.sel.Skip {
		return st, nil
	}
	content, err := o.generate(ctx, st, false)
	if err != nil {
		return st, err
	}
	st.content = content
	return st, nil
}

func (o *Orchestrator) scoreStage(ctx context.Context, st pipelineState) (pipelineState, error) {
	if st.sel.Skip {
		return st, nil
	}
	scores, err := o.score(ctx, st, st.content)
	if err != nil {
		return st, err
	}
	st.scores = scores
	return st, nil
}

// dedupStage regenerates once when the hint repeats the most recent prior
// hint. A failed regeneration keeps the first hint.
func (o *Orchestrator) dedupStage(ctx context.Context, st pipelineState) (pipelineState, error) {
	if st.sel.Skip || len(st.in.PriorHints) == 0 {
		return st, nil
	}
	last := normalize(st.in.PriorHints[0])
	if normalize(st.content) != last {
		return st, nil
	}

	st.dedupRetried = true
	dedupTotal.WithLabelValues("retried").Inc()

	content, err := o.generate(ctx, st, true)
	var scores *Scores
	if err == nil {
		scores, err = o.score(ctx, st, content)
	}
	if err != nil {
		o.log.Warn("hint regeneration failed, delivering duplicate", "problem_id", st.in.Problem.ID, "error", err)
		dedupTotal.WithLabelValues("duplicate_delivered").Inc()
		st.duplicate = true
		return st, nil
	}

	st.content, st.scores = content, scores
	if normalize(content) == last {
		o.log.Warn("regenerated hint is still a duplicate", "problem_id", st.in.Problem.ID)
		dedupTotal.WithLabelValues("duplicate_delivered").Inc()
		st.duplicate = true
	}
	return st, nil
}

func (o *Orchestrator) generate(ctx context.Context, st pipelineState, avoid bool) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeHintGen)
	userMsg, err := generationPrompt.Format(map[string]any{
		"problem":       problemText(st.in.Problem),
		"code":          st.in.Code,
		"attempts":      st.in.Progress.AttemptsCount,
		"failed":        st.failed,
		"elapsed":       int(st.in.Progress.TimeSinceLastAttempt),
		"assessment":    formatAssessment(st.eval),
		"previous":      formatPrevious(st.in.PriorHints),
		"history":       st.in.RAG.String(),
		"level":         st.sel.Level,
		"hint_type":     string(st.sel.Type),
		"type_guidance": typeGuidance[st.sel.Type],
		"avoid":         avoid,
	})
	if err != nil {
		return "", &GenerationError{Stage: StageGenerate, Err: fmt.Errorf("format prompt: %w", err)}
	}

	resp, err := o.provider.Generate(ctx, llm.Request{
		System:      generationSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.GenerationTemperature,
	})
	if err != nil {
		return "", &GenerationError{Stage: StageGenerate, Err: err}
	}
	text, err := llm.Text(resp)
	if err != nil {
		return "", &GenerationError{Stage: StageGenerate, Err: err}
	}
	return text, nil
}

func (o *Orchestrator) score(ctx context.Context, st pipelineState, content string) (*Scores, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeHintEval)
	userMsg, err := scoringPrompt.Format(map[string]any{
		"problem":  problemText(st.in.Problem),
		"code":     st.in.Code,
		"attempts": st.in.Progress.AttemptsCount,
		"failed":   st.failed,
		"level":    st.sel.Level,
		"previous": formatPrevious(st.in.PriorHints),
		"hint":     content,
	})
	if err != nil {
		return nil, &GenerationError{Stage: StageScore, Err: fmt.Errorf("format prompt: %w", err)}
	}

	resp, err := o.provider.Generate(ctx, llm.Request{
		System:      scoringSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      HintEvaluationSchema,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.ScoringTemperature,
	})
	if err != nil {
		return nil, &GenerationError{Stage: StageScore, Err: err}
	}
	s, err := llm.Decode[Scores](resp)
	if err != nil {
		return nil, &GenerationError{Stage: StageScore, Err: err}
	}
	return &s, nil
}

// normalize folds case and whitespace for duplicate comparison.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func problemText(p *store.Problem) string {
	if p == nil {
		return ""
	}
	if p.Description == "" {
		return p.Title
	}
	return p.Title + "\n\n" + p.Description
}
