package rag

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/abhisek/hintly/internal/diagnosis"
	"github.com/abhisek/hintly/internal/similarity"
	"github.com/abhisek/hintly/internal/store"
)

type fakeSource struct {
	count     int
	attempted []store.AttemptedProblem
	solutions map[int64]*store.Attempt
	failed    []store.Attempt

	countErr    error
	solutionErr error
}

func (f *fakeSource) CountUserAttempts(context.Context, int64) (int, error) {
	return f.count, f.countErr
}

func (f *fakeSource) ListAttemptedProblems(context.Context, int64, int64) ([]store.AttemptedProblem, error) {
	return f.attempted, nil
}

func (f *fakeSource) LatestSuccessfulAttempt(_ context.Context, _ int64, problemID int64) (*store.Attempt, error) {
	if f.solutionErr != nil {
		return nil, f.solutionErr
	}
	return f.solutions[problemID], nil
}

func (f *fakeSource) RecentFailedAttempts(_ context.Context, _ int64, _ int64, limit int) ([]store.Attempt, error) {
	if len(f.failed) > limit {
		return f.failed[:limit], nil
	}
	return f.failed, nil
}

var current = &store.Problem{
	ID:          1,
	Title:       "Two Sum",
	Description: "Given an array of integers and a target, return the indices of the two numbers that add up to the target.",
	Difficulty:  "easy",
}

func attempted(id, last int64, title, desc string) store.AttemptedProblem {
	return store.AttemptedProblem{
		Problem:       store.Problem{ID: id, Title: title, Description: desc, Difficulty: "easy"},
		LastAttemptID: last,
	}
}

func failedAttempt(t *testing.T, reason string) store.Attempt {
	t.Helper()
	raw, err := json.Marshal(diagnosis.Evaluation{Reason: reason})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return store.Attempt{ProblemID: current.ID, Status: store.AttemptFailed, Evaluation: raw}
}

func baseSource(t *testing.T) *fakeSource {
	return &fakeSource{
		count: 5,
		attempted: []store.AttemptedProblem{
			attempted(2, 10, "Two Sum II", "Given a sorted array of integers and a target, return the indices of the two numbers that add up to the target."),
			attempted(3, 9, "Binary Tree Level Order", "Traverse a binary tree level by level and collect node values per depth."),
		},
		solutions: map[int64]*store.Attempt{
			2: {ProblemID: 2, Status: store.AttemptSuccess, Code: "def two_sum(nums, target):\n    l, r = 0, len(nums) - 1"},
		},
		failed: []store.Attempt{
			failedAttempt(t, "IndexError: list index out of range"),
			failedAttempt(t, "IndexError: index out of bounds at the end"),
			failedAttempt(t, "Returns the wrong answer for duplicates in sequence"),
		},
	}
}

func TestBuild_InsufficientHistory(t *testing.T) {
	src := baseSource(t)
	src.count = 2
	if rc := NewBuilder(src, nil).Build(context.Background(), 7, current, "code"); rc != nil {
		t.Fatalf("got context with %d attempts, want nil", src.count)
	}
}

func TestBuild_EmptyCorpus(t *testing.T) {
	src := baseSource(t)
	src.attempted = nil
	if rc := NewBuilder(src, nil).Build(context.Background(), 7, current, "code"); rc != nil {
		t.Fatal("got context for empty corpus, want nil")
	}
}

func unrelatedSource(t *testing.T) *fakeSource {
	src := baseSource(t)
	src.attempted = src.attempted[1:]
	src.attempted = append(src.attempted,
		attempted(4, 8, "Merge Intervals", "Merge all overlapping intervals in a list of ranges."))
	return src
}

func TestBuild_NoMatches(t *testing.T) {
	src := unrelatedSource(t)
	src.failed = nil
	if rc := NewBuilder(src, nil).Build(context.Background(), 7, current, "code"); rc != nil {
		t.Fatalf("got %d similar problems, want nil context", len(rc.Similar))
	}
}

func TestBuild_NoMatchesKeepsRecurringErrors(t *testing.T) {
	rc := NewBuilder(unrelatedSource(t), nil).Build(context.Background(), 7, current, "code")
	if rc == nil {
		t.Fatal("got nil context, want recurring errors only")
	}
	if len(rc.Similar) != 0 {
		t.Errorf("similar = %+v, want none", rc.Similar)
	}
	if len(rc.RecurringErrors) == 0 || rc.RecurringErrors[0].Pattern != diagnosis.PatternIndexError {
		t.Fatalf("recurring = %+v, want index_error first", rc.RecurringErrors)
	}
	if strings.Contains(rc.Text, "Similar problems") || strings.Contains(rc.Text, "chosen because") {
		t.Errorf("errors-only text mentions similar problems:\n%s", rc.Text)
	}
	if !strings.Contains(rc.Text, "Common errors") {
		t.Errorf("text missing recurring errors:\n%s", rc.Text)
	}
}

func TestBuild_SimilarWithSolution(t *testing.T) {
	rc := NewBuilder(baseSource(t), nil).Build(context.Background(), 7, current, "def solve(): pass")
	if rc == nil {
		t.Fatal("got nil context")
	}
	if len(rc.Similar) != 1 || rc.Similar[0].ProblemID != 2 {
		t.Fatalf("similar = %+v, want only problem 2", rc.Similar)
	}
	if rc.Similar[0].Score <= similarity.Threshold {
		t.Errorf("score %.3f not above threshold", rc.Similar[0].Score)
	}
	if !strings.Contains(rc.Text, "Two Sum II") || !strings.Contains(rc.Text, "def two_sum") {
		t.Errorf("text missing exemplar:\n%s", rc.Text)
	}
	if strings.Contains(rc.Text, "Binary Tree") {
		t.Errorf("text contains unrelated problem:\n%s", rc.Text)
	}
}

func TestBuild_RecurringErrors(t *testing.T) {
	rc := NewBuilder(baseSource(t), nil).Build(context.Background(), 7, current, "x")
	if rc == nil {
		t.Fatal("got nil context")
	}
	if len(rc.RecurringErrors) == 0 {
		t.Fatal("no recurring errors")
	}
	top := rc.RecurringErrors[0]
	if top.Pattern != diagnosis.PatternIndexError || top.Count != 2 {
		t.Errorf("top error = %+v, want index_error x2", top)
	}
	if !strings.Contains(rc.Text, "Index out of range (2)") {
		t.Errorf("text missing error summary:\n%s", rc.Text)
	}
}

func TestBuild_StoredPatternFallback(t *testing.T) {
	src := baseSource(t)
	src.failed = []store.Attempt{
		{ProblemID: 1, Status: store.AttemptFailed, ErrorPattern: string(diagnosis.PatternSyntaxError)},
		{ProblemID: 1, Status: store.AttemptFailed, Evaluation: json.RawMessage(`{not json`)},
	}
	rc := NewBuilder(src, nil).Build(context.Background(), 7, current, "x")
	if rc == nil {
		t.Fatal("got nil context")
	}
	got := map[diagnosis.Pattern]int{}
	for _, e := range rc.RecurringErrors {
		got[e.Pattern] = e.Count
	}
	if got[diagnosis.PatternSyntaxError] != 1 || got[diagnosis.PatternOther] != 1 {
		t.Errorf("recurring = %+v", rc.RecurringErrors)
	}
}

func TestBuild_SkipsIdenticalSolution(t *testing.T) {
	src := baseSource(t)
	code := src.solutions[2].Code
	rc := NewBuilder(src, nil).Build(context.Background(), 7, current, "  "+code+"\n")
	if rc == nil {
		t.Fatal("got nil context")
	}
	if rc.Similar[0].Solution != "" {
		t.Errorf("solution identical to current code was included")
	}
}

func TestBuild_TruncatesLongFields(t *testing.T) {
	src := baseSource(t)
	src.solutions[2].Code = strings.Repeat("x", 1000)
	rc := NewBuilder(src, nil).Build(context.Background(), 7, current, "y")
	if rc == nil {
		t.Fatal("got nil context")
	}
	sol := rc.Similar[0].Solution
	if utf8.RuneCountInString(sol) != solutionChars+3 || !strings.HasSuffix(sol, "...") {
		t.Errorf("solution length %d, want %d with ellipsis", utf8.RuneCountInString(sol), solutionChars+3)
	}
}

func TestBuild_BudgetDropsLowestSimilarity(t *testing.T) {
	src := baseSource(t)
	src.attempted = []store.AttemptedProblem{
		attempted(2, 10, "Two Sum II", current.Description+" The array is sorted."),
		attempted(3, 11, "Two Sum III", current.Description+" Values arrive as a stream from a data source."),
		attempted(4, 12, "Two Sum IV", current.Description+" The input is a binary search tree instead of an array of plain values."),
	}
	long := strings.Repeat("code ", 200)
	src.solutions = map[int64]*store.Attempt{
		2: {Code: long + "a"},
		3: {Code: long + "b"},
		4: {Code: long + "c"},
	}

	var corpus []similarity.Document
	for _, ap := range src.attempted {
		corpus = append(corpus, similarity.Document{ID: ap.ID, Text: problemText(&ap.Problem), Recency: ap.LastAttemptID})
	}
	ranked := similarity.SimilarProblems(problemText(current), corpus)
	if len(ranked) != 3 {
		t.Fatalf("setup: %d matches, want 3", len(ranked))
	}

	rc := NewBuilder(src, nil).Build(context.Background(), 7, current, "z")
	if rc == nil {
		t.Fatal("got nil context")
	}
	if n := utf8.RuneCountInString(rc.Text); n > MaxChars {
		t.Fatalf("text is %d chars, want <= %d", n, MaxChars)
	}
	if len(rc.Similar) >= 3 {
		t.Fatalf("kept %d exemplars, want some dropped", len(rc.Similar))
	}
	for i, s := range rc.Similar {
		if s.ProblemID != ranked[i].ID {
			t.Errorf("kept[%d] = problem %d, want %d", i, s.ProblemID, ranked[i].ID)
		}
	}
}

func TestBuild_SourceErrors(t *testing.T) {
	boom := errors.New("boom")

	src := baseSource(t)
	src.countErr = boom
	if rc := NewBuilder(src, nil).Build(context.Background(), 7, current, "x"); rc != nil {
		t.Error("count error: got context, want nil")
	}

	src = baseSource(t)
	src.solutionErr = boom
	if rc := NewBuilder(src, nil).Build(context.Background(), 7, current, "x"); rc != nil {
		t.Error("solution error: got context, want nil")
	}

	if rc := NewBuilder(baseSource(t), nil).Build(context.Background(), 7, nil, "x"); rc != nil {
		t.Error("nil problem: got context, want nil")
	}
}

func TestContextString(t *testing.T) {
	var rc *Context
	if rc.String() != "" {
		t.Error("nil context should render empty")
	}
	rc = &Context{Text: "hello"}
	if rc.String() != "hello" {
		t.Errorf("String() = %q", rc.String())
	}
}
