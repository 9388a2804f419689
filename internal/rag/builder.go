// Package rag assembles retrieval context for hint generation from a
// learner's own history: similar problems they solved, and the errors they
// keep making on the current one.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/hintly/internal/diagnosis"
	"github.com/abhisek/hintly/internal/logger"
	"github.com/abhisek/hintly/internal/similarity"
	"github.com/abhisek/hintly/internal/store"
)

const (
	// MinAttempts is the total attempt count below which history is too
	// thin to retrieve from.
	MinAttempts = 3

	// MaxChars caps the assembled context text, in characters.
	MaxChars = 1500

	// MaxSimilar caps the number of similar problems considered.
	MaxSimilar = 3

	// FailedAttempts is how many recent failures on the current problem
	// feed the recurring-error summary.
	FailedAttempts = 3

	descriptionChars = 200
	solutionChars    = 300
	fetchConcurrency = 4
)

// Build outcomes. OutcomeUsed and OutcomeErrorsOnly return a context; the
// rest mean Build returned nil.
const (
	OutcomeUsed                = "used"
	OutcomeErrorsOnly          = "errors_only"
	OutcomeInsufficientHistory = "insufficient_history"
	OutcomeEmptyCorpus         = "empty_corpus"
	OutcomeNoMatches           = "no_matches"
	OutcomeError               = "error"
)

var buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hintly_rag_builds_total",
	Help: "RAG context builds by outcome",
}, []string{"outcome"})

// Source is the read side of storage the builder needs.
type Source interface {
	CountUserAttempts(ctx context.Context, userID int64) (int, error)
	ListAttemptedProblems(ctx context.Context, userID, excludeProblemID int64) ([]store.AttemptedProblem, error)
	LatestSuccessfulAttempt(ctx context.Context, userID, problemID int64) (*store.Attempt, error)
	RecentFailedAttempts(ctx context.Context, userID, problemID int64, limit int) ([]store.Attempt, error)
}

// SimilarProblem is a previously attempted problem that resembles the
// current one, with the learner's accepted solution when they have one.
type SimilarProblem struct {
	ProblemID   int64   `json:"problem_id"`
	Title       string  `json:"title"`
	Difficulty  string  `json:"difficulty"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	Solution    string  `json:"solution,omitempty"`
}

// ErrorCount is how often one error pattern showed up in recent failures.
type ErrorCount struct {
	Pattern  diagnosis.Pattern  `json:"pattern"`
	Category diagnosis.Category `json:"category"`
	Count    int                `json:"count"`
}

// Context is the retrieved history for one hint request.
type Context struct {
	Similar         []SimilarProblem `json:"similar"`
	RecurringErrors []ErrorCount     `json:"recurring_errors"`

	// Text is the rendered context, at most MaxChars characters.
	Text string `json:"text"`
}

func (c *Context) String() string {
	if c == nil {
		return ""
	}
	return c.Text
}

// Builder builds retrieval contexts. It never fails: any problem reading
// history degrades to a nil context.
type Builder struct {
	src Source
	log *logger.Logger
}

// NewBuilder returns a builder reading from src. A nil logger discards
// output.
func NewBuilder(src Source, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{src: src, log: log}
}

// Build returns the retrieval context for userID working on problem with
// the given code, or nil when history is missing, too thin, or could not
// be read.
func (b *Builder) Build(ctx context.Context, userID int64, problem *store.Problem, code string) *Context {
	log := b.log.With("user_id", userID)
	if problem == nil {
		b.fallback(log, OutcomeError, "problem", "missing")
		return nil
	}
	log = log.With("problem_id", problem.ID)

	rc, outcome, err := b.build(ctx, userID, problem, code)
	if err != nil {
		b.fallback(log, OutcomeError, "error", err)
		return nil
	}
	if rc == nil {
		b.fallback(log, outcome)
		return nil
	}
	buildsTotal.WithLabelValues(outcome).Inc()
	log.Debug("rag context built",
		"outcome", outcome,
		"similar", len(rc.Similar),
		"recurring_errors", len(rc.RecurringErrors),
		"chars", utf8.RuneCountInString(rc.Text))
	return rc
}

func (b *Builder) fallback(log *logger.Logger, outcome string, kv ...any) {
	buildsTotal.WithLabelValues(outcome).Inc()
	kv = append([]any{"outcome", outcome}, kv...)
	if outcome == OutcomeError {
		log.Warn("rag context unavailable", kv...)
		return
	}
	log.Info("rag context skipped", kv...)
}

func (b *Builder) build(ctx context.Context, userID int64, problem *store.Problem, code string) (*Context, string, error) {
	n, err := b.src.CountUserAttempts(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("count attempts: %w", err)
	}
	if n < MinAttempts {
		return nil, OutcomeInsufficientHistory, nil
	}

	attempted, err := b.src.ListAttemptedProblems(ctx, userID, problem.ID)
	if err != nil {
		return nil, "", fmt.Errorf("list attempted problems: %w", err)
	}
	if len(attempted) == 0 {
		return nil, OutcomeEmptyCorpus, nil
	}

	byID := make(map[int64]store.Problem, len(attempted))
	corpus := make([]similarity.Document, 0, len(attempted))
	for _, ap := range attempted {
		byID[ap.ID] = ap.Problem
		corpus = append(corpus, similarity.Document{
			ID:      ap.ID,
			Text:    problemText(&ap.Problem),
			Recency: ap.LastAttemptID,
		})
	}
	matches := similarity.SimilarProblems(problemText(problem), corpus)
	if len(matches) == 0 {
		// Recurring errors on the current problem stand on their own.
		failed, err := b.src.RecentFailedAttempts(ctx, userID, problem.ID, FailedAttempts)
		if err != nil {
			return nil, "", fmt.Errorf("recent failures: %w", err)
		}
		recurring := countErrors(failed)
		if len(recurring) == 0 {
			return nil, OutcomeNoMatches, nil
		}
		rc := &Context{RecurringErrors: recurring}
		rc.Text = fit(render(rc))
		return rc, OutcomeErrorsOnly, nil
	}
	if len(matches) > MaxSimilar {
		matches = matches[:MaxSimilar]
	}

	similar := make([]SimilarProblem, len(matches))
	var recurring []ErrorCount

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(fetchConcurrency)
	for i, m := range matches {
		p := byID[m.ID]
		similar[i] = SimilarProblem{
			ProblemID:   p.ID,
			Title:       p.Title,
			Difficulty:  p.Difficulty,
			Description: truncate(p.Description, descriptionChars),
			Score:       m.Score,
		}
		eg.Go(func() error {
			a, err := b.src.LatestSuccessfulAttempt(egctx, userID, m.ID)
			if err != nil {
				return fmt.Errorf("solution for problem %d: %w", m.ID, err)
			}
			if a != nil && !sameCode(a.Code, code) {
				similar[i].Solution = truncate(a.Code, solutionChars)
			}
			return nil
		})
	}
	eg.Go(func() error {
		failed, err := b.src.RecentFailedAttempts(egctx, userID, problem.ID, FailedAttempts)
		if err != nil {
			return fmt.Errorf("recent failures: %w", err)
		}
		recurring = countErrors(failed)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, "", err
	}

	rc := &Context{Similar: similar, RecurringErrors: recurring}
	rc.Text = render(rc)
	for utf8.RuneCountInString(rc.Text) > MaxChars && len(rc.Similar) > 1 {
		rc.Similar = rc.Similar[:len(rc.Similar)-1]
		rc.Text = render(rc)
	}
	rc.Text = fit(rc.Text)
	return rc, OutcomeUsed, nil
}

// fit cuts text to MaxChars.
func fit(text string) string {
	if utf8.RuneCountInString(text) > MaxChars {
		return string([]rune(text)[:MaxChars])
	}
	return text
}

// problemText is the text a problem is indexed and queried by.
func problemText(p *store.Problem) string {
	return strings.Join([]string{p.Title, p.Description, p.Difficulty}, " ")
}

// countErrors classifies each failed attempt and tallies patterns, most
// frequent first.
func countErrors(failed []store.Attempt) []ErrorCount {
	if len(failed) == 0 {
		return nil
	}
	counts := make(map[diagnosis.Pattern]int)
	for i := range failed {
		counts[attemptPattern(&failed[i])]++
	}
	out := make([]ErrorCount, 0, len(counts))
	for p, n := range counts {
		out = append(out, ErrorCount{Pattern: p, Category: diagnosis.CategoryOf(p), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}

// attemptPattern reclassifies an attempt from its stored evaluation,
// falling back to the pattern recorded with it.
func attemptPattern(a *store.Attempt) diagnosis.Pattern {
	if len(a.Evaluation) > 0 {
		var e diagnosis.Evaluation
		if err := json.Unmarshal(a.Evaluation, &e); err == nil {
			return diagnosis.Classify(&e).Pattern
		}
	}
	if p := diagnosis.Pattern(a.ErrorPattern); diagnosis.Lookup(p) != nil {
		return p
	}
	return diagnosis.PatternOther
}

func render(rc *Context) string {
	var sb strings.Builder
	if len(rc.Similar) > 0 {
		sb.WriteString("Similar problems you have worked on:\n")
	}
	for i, s := range rc.Similar {
		fmt.Fprintf(&sb, "%d. %s (%s, similarity %.2f)\n", i+1, s.Title, s.Difficulty, s.Score)
		if s.Description != "" {
			fmt.Fprintf(&sb, "   %s\n", s.Description)
		}
		if s.Solution != "" {
			fmt.Fprintf(&sb, "   Your accepted solution:\n%s\n", s.Solution)
		}
	}

	if len(rc.RecurringErrors) > 0 {
		parts := make([]string, len(rc.RecurringErrors))
		for i, e := range rc.RecurringErrors {
			label := string(e.Pattern)
			if info := diagnosis.Lookup(e.Pattern); info != nil {
				label = info.Label
			}
			parts[i] = fmt.Sprintf("%s (%d)", label, e.Count)
		}
		fmt.Fprintf(&sb, "Common errors in your recent attempts on this problem: %s\n", strings.Join(parts, ", "))
	}

	if len(rc.Similar) > 0 {
		fmt.Fprintf(&sb, "These problems were chosen because their statements overlap with the current one (similarity above %.1f).", similarity.Threshold)
	}
	return strings.TrimSpace(sb.String())
}

// truncate shortens s to n characters, marking the cut with "...".
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func sameCode(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
