// Package hints runs the adaptive hint workflow: it tracks learner
// progress, retrieves context from their history, drives the generative
// pipeline and persists the outcome of each request atomically.
package hints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/hintly/internal/llm"
	"github.com/abhisek/hintly/internal/lock"
	"github.com/abhisek/hintly/internal/logger"
	"github.com/abhisek/hintly/internal/progress"
	"github.com/abhisek/hintly/internal/rag"
	"github.com/abhisek/hintly/internal/store"
)

// Store is the storage the service needs.
type Store interface {
	rag.Source
	GetProblem(ctx context.Context, id int64) (*store.Problem, error)
	GetProgress(ctx context.Context, userID, problemID int64) (*store.Progress, error)
	ListRecentHintDeliveries(ctx context.Context, userID, problemID int64, limit int) ([]store.DeliveredHint, error)
	CreateFeedback(ctx context.Context, f *store.Feedback) error
	InTx(ctx context.Context, fn func(tx *store.Tx) error) error
}

// Service handles hint requests.
type Service struct {
	store  Store
	orch   *Orchestrator
	rag    *rag.Builder
	locker lock.Locker
	cfg    Config
	log    *logger.Logger
	now    func() time.Time
}

// NewService wires the workflow. A nil locker serializes requests within
// this process only.
func NewService(st Store, provider llm.Provider, locker lock.Locker, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	if cfg.PriorHintLimit < 1 {
		cfg.PriorHintLimit = DefaultConfig().PriorHintLimit
	}
	return &Service{
		store:  st,
		orch:   NewOrchestrator(provider, cfg, log),
		rag:    rag.NewBuilder(st, log.With("component", "rag")),
		locker: locker,
		cfg:    cfg,
		log:    log.With("service", "hints"),
		now:    time.Now,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// RequestHint evaluates the learner's code and delivers the next hint.
func (s *Service) RequestHint(ctx context.Context, req HintRequest) (*Result, error) {
	res, err := s.requestHint(ctx, req)
	requestsTotal.WithLabelValues("manual", outcomeLabel(err)).Inc()
	return res, err
}

func (s *Service) requestHint(ctx context.Context, req HintRequest) (*Result, error) {
	if err := validateIDs(req.UserID, req.ProblemID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Code) == "" {
		return nil, &ClientInputError{Field: "code", Reason: "must not be empty"}
	}

	unlock, err := s.locker.Lock(ctx, lock.Key(req.UserID, req.ProblemID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.process(ctx, req, nil, false)
}

// CheckAutoTrigger delivers a hint only when the learner is stuck.
// Otherwise it reports their current progress.
func (s *Service) CheckAutoTrigger(ctx context.Context, req AutoTriggerRequest) (*AutoTriggerResult, error) {
	res, err := s.checkAutoTrigger(ctx, req)
	if err == nil {
		autoTriggerChecks.WithLabelValues(fmt.Sprint(res.Triggered)).Inc()
		if res.Triggered {
			requestsTotal.WithLabelValues("auto", "ok").Inc()
		}
	} else {
		requestsTotal.WithLabelValues("auto", outcomeLabel(err)).Inc()
	}
	return res, err
}

func (s *Service) checkAutoTrigger(ctx context.Context, req AutoTriggerRequest) (*AutoTriggerResult, error) {
	if err := validateIDs(req.UserID, req.ProblemID); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.Key(req.UserID, req.ProblemID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	stored, err := s.store.GetProgress(ctx, req.UserID, req.ProblemID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if stored == nil {
		stored = &store.Progress{UserID: req.UserID, ProblemID: req.ProblemID, CurrentHintLevel: progress.MinLevel}
	}
	snap := progress.SnapshotAt(stored, s.now())
	if !snap.IsStuck {
		return &AutoTriggerResult{UserProgress: snap}, nil
	}
	if strings.TrimSpace(req.Code) == "" {
		return nil, &ClientInputError{Field: "code", Reason: "must not be empty"}
	}

	s.log.Info("auto-triggering hint",
		"user_id", req.UserID,
		"problem_id", req.ProblemID,
		"failed_attempts", snap.FailedAttemptsCount,
		"idle_seconds", int(snap.TimeSinceLastAttempt))

	signals := req.Signals
	res, err := s.process(ctx, HintRequest{UserID: req.UserID, ProblemID: req.ProblemID, Code: req.Code}, &signals, true)
	if err != nil {
		return nil, err
	}
	return &AutoTriggerResult{Triggered: true, Result: res, UserProgress: res.UserProgress}, nil
}

// process runs one request under the per-key lock. Nothing is written
// unless every stage succeeds.
func (s *Service) process(ctx context.Context, req HintRequest, signals *AttemptSignals, auto bool) (*Result, error) {
	log := s.log.With("user_id", req.UserID, "problem_id", req.ProblemID, "request_id", llm.RequestIDFrom(ctx))

	problem, create, err := s.resolveProblem(ctx, req.ProblemID, req.Problem)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.GetProgress(ctx, req.UserID, req.ProblemID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if stored == nil {
		stored = &store.Progress{UserID: req.UserID, ProblemID: req.ProblemID}
	}
	tracker := progress.NewTracker(stored)
	snap := tracker.Advance(s.now())
	if snap.Escalated {
		log.Info("hint level escalated", "level", snap.CurrentHintLevel, "idle_seconds", int(snap.TimeSinceLastAttempt))
	}

	var prior []string
	if !create {
		deliveries, err := s.store.ListRecentHintDeliveries(ctx, req.UserID, req.ProblemID, s.cfg.PriorHintLimit)
		if err != nil {
			return nil, fmt.Errorf("load prior hints: %w", err)
		}
		for _, d := range deliveries {
			prior = append(prior, d.Content)
		}
	}

	rc := s.rag.Build(ctx, req.UserID, problem, req.Code)

	out, err := s.orch.Process(ctx, &Input{
		Problem:    problem,
		Code:       req.Code,
		Progress:   snap,
		PriorHints: prior,
		RAG:        rc,
		Signals:    signals,
	})
	if err != nil {
		log.Warn("hint pipeline failed", "error", err)
		return nil, err
	}
	tracker.RecordOutcome(out.Evaluation.Success)

	res := &Result{
		AttemptEvaluation:  out.Evaluation,
		UserProgress:       tracker.Snapshot(),
		DedupRetried:       out.DedupRetried,
		DuplicateDelivered: out.DuplicateDelivered,
		AutoTriggered:      auto,
		RAGUsed:            rc != nil,
	}
	if err := s.persist(ctx, req, problem, create, tracker.Progress(), out, res); err != nil {
		log.Error("persist hint request", "error", err)
		return nil, err
	}

	if out.DuplicateDelivered {
		log.Warn("delivered duplicate hint", "hint_id", res.Hint.ID)
	}
	log.Info("hint request completed",
		"attempt_id", res.AttemptID,
		"success", out.Evaluation.Success,
		"error_pattern", out.Evaluation.Pattern,
		"level", out.Selection.Level,
		"hint_type", out.Selection.Type,
		"auto", auto,
		"rag", res.RAGUsed,
		"dedup_retried", out.DedupRetried)
	return res, nil
}

func (s *Service) persist(ctx context.Context, req HintRequest, problem *store.Problem, create bool,
	p *store.Progress, out *Outcome, res *Result) error {
	evalJSON, err := json.Marshal(out.Evaluation)
	if err != nil {
		return fmt.Errorf("encode evaluation: %w", err)
	}

	return s.store.InTx(ctx, func(tx *store.Tx) error {
		if create {
			if _, err := tx.GetOrCreateProblem(ctx, problem.ID, problem); err != nil {
				return err
			}
		}
		if err := tx.SaveProgress(ctx, p); err != nil {
			return err
		}

		status := store.AttemptFailed
		if out.Evaluation.Success {
			status = store.AttemptSuccess
		}
		attempt := &store.Attempt{
			UserID:        req.UserID,
			ProblemID:     problem.ID,
			Code:          req.Code,
			Status:        status,
			Evaluation:    evalJSON,
			ErrorPattern:  string(out.Evaluation.Pattern),
			ErrorCategory: string(out.Evaluation.Category),
		}
		if err := tx.CreateAttempt(ctx, attempt); err != nil {
			return err
		}
		res.AttemptID = attempt.ID

		if out.Selection.Skip {
			return nil
		}

		hint := &store.Hint{
			ProblemID: problem.ID,
			Content:   out.Content,
			Level:     out.Selection.Level,
			Type:      string(out.Selection.Type),
		}
		if err := tx.CreateHint(ctx, hint); err != nil {
			return err
		}
		if out.Scores != nil {
			if err := tx.CreateHintEvaluation(ctx, &store.HintEvaluation{
				HintID:            hint.ID,
				Safety:            out.Scores.Safety,
				Helpfulness:       out.Scores.Helpfulness,
				Quality:           out.Scores.Quality,
				ProgressAlignment: out.Scores.ProgressAlignment,
				PedagogicalValue:  out.Scores.PedagogicalValue,
			}); err != nil {
				return err
			}
		}
		if err := tx.CreateHintDelivery(ctx, &store.HintDelivery{
			HintID:        hint.ID,
			UserID:        req.UserID,
			AttemptID:     attempt.ID,
			AutoTriggered: res.AutoTriggered,
			Duplicate:     out.DuplicateDelivered,
		}); err != nil {
			return err
		}

		res.Hint = &HintView{ID: hint.ID, Content: hint.Content, Level: hint.Level, Type: out.Selection.Type}
		res.Evaluation = out.Scores
		return nil
	})
}

// resolveProblem loads the problem, or prepares it from meta when it does
// not exist. create reports that the problem still has to be written.
func (s *Service) resolveProblem(ctx context.Context, id int64, meta *ProblemData) (*store.Problem, bool, error) {
	p, err := s.store.GetProblem(ctx, id)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("load problem: %w", err)
	}
	if meta == nil {
		return nil, false, &NotFoundError{Resource: "problem", ID: id}
	}
	return newProblem(id, meta), true, nil
}

func newProblem(id int64, meta *ProblemData) *store.Problem {
	p := &store.Problem{
		ID:          id,
		Title:       meta.Title,
		Description: meta.Description,
		Difficulty:  meta.Difficulty,
	}
	if p.Title == "" {
		p.Title = store.DefaultProblemTitle
	}
	if p.Difficulty == "" {
		p.Difficulty = store.DefaultProblemDifficulty
	}
	return p
}

// EvaluateRequest asks for a standalone evaluation. The problem is looked
// up by ID, or taken from Problem when it is not stored.
type EvaluateRequest struct {
	ProblemID int64
	Problem   *ProblemData
	Code      string
	Signals   *AttemptSignals
}

// EvaluateAttempt evaluates and classifies code without recording
// anything.
func (s *Service) EvaluateAttempt(ctx context.Context, req EvaluateRequest) (*AttemptEvaluation, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, &ClientInputError{Field: "code", Reason: "must not be empty"}
	}

	var problem *store.Problem
	switch {
	case req.ProblemID > 0:
		p, _, err := s.resolveProblem(ctx, req.ProblemID, req.Problem)
		if err != nil {
			return nil, err
		}
		problem = p
	case req.Problem != nil && strings.TrimSpace(req.Problem.Description) != "":
		problem = newProblem(0, req.Problem)
	default:
		return nil, &ClientInputError{Field: "problem", Reason: "problem_id or a problem description is required"}
	}
	return s.orch.Evaluate(ctx, problem, req.Code, req.Signals)
}

// FeedbackRequest rates a delivered hint.
type FeedbackRequest struct {
	HintID int64
	UserID int64
	Rating int
	Text   string
}

// SubmitFeedback records a rating from 1 to 5 for a hint.
func (s *Service) SubmitFeedback(ctx context.Context, req FeedbackRequest) (*store.Feedback, error) {
	if req.HintID <= 0 {
		return nil, &ClientInputError{Field: "hint_id", Reason: "must be positive"}
	}
	if req.UserID <= 0 {
		return nil, &ClientInputError{Field: "user_id", Reason: "must be positive"}
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, &ClientInputError{Field: "rating", Reason: "must be between 1 and 5"}
	}

	f := &store.Feedback{HintID: req.HintID, UserID: req.UserID, Rating: req.Rating, Text: strings.TrimSpace(req.Text)}
	if err := s.store.CreateFeedback(ctx, f); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "hint", ID: req.HintID}
		}
		return nil, err
	}
	return f, nil
}

// ResetProgress returns the learner to the first hint level with a clean
// failure streak on one problem. Attempts are kept.
func (s *Service) ResetProgress(ctx context.Context, userID, problemID int64) (progress.Snapshot, error) {
	if err := validateIDs(userID, problemID); err != nil {
		return progress.Snapshot{}, err
	}

	unlock, err := s.locker.Lock(ctx, lock.Key(userID, problemID))
	if err != nil {
		return progress.Snapshot{}, err
	}
	defer unlock()

	stored, err := s.store.GetProgress(ctx, userID, problemID)
	if err != nil {
		return progress.Snapshot{}, fmt.Errorf("load progress: %w", err)
	}
	if stored == nil {
		return progress.Snapshot{}, &NotFoundError{Resource: "progress for problem", ID: problemID}
	}

	tr := progress.NewTracker(stored)
	tr.Reset()
	if err := s.store.InTx(ctx, func(tx *store.Tx) error {
		return tx.SaveProgress(ctx, tr.Progress())
	}); err != nil {
		return progress.Snapshot{}, fmt.Errorf("save progress: %w", err)
	}
	s.log.Info("progress reset", "user_id", userID, "problem_id", problemID)
	return progress.SnapshotAt(tr.Progress(), s.now()), nil
}

func validateIDs(userID, problemID int64) error {
	if userID <= 0 {
		return &ClientInputError{Field: "user_id", Reason: "must be positive"}
	}
	if problemID <= 0 {
		return &ClientInputError{Field: "problem_id", Reason: "must be positive"}
	}
	return nil
}

func outcomeLabel(err error) string {
	var (
		input *ClientInputError
		nf    *NotFoundError
		gen   *GenerationError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &input):
		return "client_error"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &gen):
		return "generation_error"
	}
	return "error"
}
