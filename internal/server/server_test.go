package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/hintly/internal/diagnosis"
	"github.com/abhisek/hintly/internal/hints"
	"github.com/abhisek/hintly/internal/llm"
	"github.com/abhisek/hintly/internal/progress"
	"github.com/abhisek/hintly/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open("sqlite", fmt.Sprintf("file:server_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeService records the last request and returns canned results.
type fakeService struct {
	err error

	hintReq     hints.HintRequest
	autoReq     hints.AutoTriggerRequest
	evalReq     hints.EvaluateRequest
	feedbackReq hints.FeedbackRequest
	gotCtx      context.Context
}

func (f *fakeService) RequestHint(ctx context.Context, req hints.HintRequest) (*hints.Result, error) {
	f.hintReq, f.gotCtx = req, ctx
	if f.err != nil {
		return nil, f.err
	}
	return &hints.Result{
		Hint:         &hints.HintView{ID: 7, Content: "Think about the empty input.", Level: 1, Type: hints.HintConceptual},
		AttemptID:    3,
		UserProgress: progress.Snapshot{AttemptsCount: 1, FailedAttemptsCount: 1, CurrentHintLevel: 1},
	}, nil
}

func (f *fakeService) CheckAutoTrigger(ctx context.Context, req hints.AutoTriggerRequest) (*hints.AutoTriggerResult, error) {
	f.autoReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &hints.AutoTriggerResult{UserProgress: progress.Snapshot{AttemptsCount: 2, CurrentHintLevel: 1}}, nil
}

func (f *fakeService) EvaluateAttempt(ctx context.Context, req hints.EvaluateRequest) (*hints.AttemptEvaluation, error) {
	f.evalReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &hints.AttemptEvaluation{
		Evaluation: diagnosis.Evaluation{Success: false, Reason: "index out of range"},
		Result:     diagnosis.Result{Pattern: diagnosis.PatternIndexError, Category: diagnosis.CategoryCorrectness},
	}, nil
}

func (f *fakeService) SubmitFeedback(ctx context.Context, req hints.FeedbackRequest) (*store.Feedback, error) {
	f.feedbackReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &store.Feedback{ID: 1, HintID: req.HintID, UserID: req.UserID, Rating: req.Rating, Text: req.Text}, nil
}

func do(t *testing.T, h http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	switch b := body.(type) {
	case nil:
		r = httptest.NewRequest(method, path, nil)
	case string:
		r = httptest.NewRequest(method, path, strings.NewReader(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = httptest.NewRequest(method, path, bytes.NewReader(data))
	}
	r.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		r.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	srv := New(&fakeService{}, openStore(t), nil)
	w := do(t, srv.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestMetrics(t *testing.T) {
	srv := New(&fakeService{}, openStore(t), nil)
	w := do(t, srv.Handler(), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRequestID(t *testing.T) {
	svc := &fakeService{}
	srv := New(svc, openStore(t), nil)
	body := map[string]any{"user_id": 1, "problem_id": 2, "code": "x = 1"}

	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/request", body, RequestIDHeader, "req-123")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", llm.RequestIDFrom(svc.gotCtx))

	w = do(t, srv.Handler(), http.MethodGet, "/health", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRequestHint(t *testing.T) {
	svc := &fakeService{}
	srv := New(svc, openStore(t), nil)

	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/request", map[string]any{
		"user_id":    1,
		"problem_id": 2,
		"code":       "def f(): pass",
		"problem":    map[string]any{"title": "Two Sum", "description": "Find two numbers.", "difficulty": "easy"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, int64(1), svc.hintReq.UserID)
	assert.Equal(t, int64(2), svc.hintReq.ProblemID)
	require.NotNil(t, svc.hintReq.Problem)
	assert.Equal(t, "Two Sum", svc.hintReq.Problem.Title)

	out := decode(t, w)
	hint := out["hint"].(map[string]any)
	assert.Equal(t, "conceptual", hint["type"])
	assert.EqualValues(t, 7, hint["id"])
	prog := out["user_progress"].(map[string]any)
	assert.EqualValues(t, 1, prog["current_hint_level"])
}

func TestRequestHint_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"missing user", map[string]any{"problem_id": 2, "code": "x"}, "user_id"},
		{"negative problem", map[string]any{"user_id": 1, "problem_id": -2, "code": "x"}, "problem_id"},
		{"missing code", map[string]any{"user_id": 1, "problem_id": 2}, "code"},
		{"bad difficulty", map[string]any{"user_id": 1, "problem_id": 2, "code": "x", "problem": map[string]any{"difficulty": "extreme"}}, "difficulty"},
		{"malformed", `{"user_id": `, "body"},
		{"empty", "", "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			srv := New(svc, openStore(t), nil)
			w := do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/request", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.field, decode(t, w)["field"])
			assert.Zero(t, svc.hintReq.UserID, "service must not be called")
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"client input", &hints.ClientInputError{Field: "code", Reason: "must not be empty"}, http.StatusBadRequest},
		{"not found", &hints.NotFoundError{Resource: "problem", ID: 2}, http.StatusNotFound},
		{"generation", &hints.GenerationError{Stage: hints.StageGenerate, Err: &llm.ErrProviderUnavailable{}}, http.StatusBadGateway},
		{"wrapped generation", fmt.Errorf("request: %w", &hints.GenerationError{Stage: hints.StageScore, Err: errors.New("x")}), http.StatusBadGateway},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&fakeService{err: tt.err}, openStore(t), nil)
			w := do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/request",
				map[string]any{"user_id": 1, "problem_id": 2, "code": "x"})
			assert.Equal(t, tt.status, w.Code)
			out := decode(t, w)
			assert.NotEmpty(t, out["request_id"])
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal error", out["error"])
			}
		})
	}
}

func TestGenerationErrorNamesStage(t *testing.T) {
	err := &hints.GenerationError{Stage: hints.StageEvaluate, Err: &llm.ErrInvalidResponse{}}
	srv := New(&fakeService{err: err}, openStore(t), nil)
	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/request",
		map[string]any{"user_id": 1, "problem_id": 2, "code": "x"})
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, hints.StageEvaluate, decode(t, w)["stage"])
}

func TestAutoTrigger(t *testing.T) {
	svc := &fakeService{}
	srv := New(svc, openStore(t), nil)
	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/auto-trigger", map[string]any{
		"user_id":             1,
		"problem_id":          2,
		"code":                "x",
		"last_attempt_status": "failed",
		"last_error":          "IndexError",
		"tests_passed":        2,
		"tests_total":         5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, hints.AttemptSignals{Status: "failed", Error: "IndexError", TestsPassed: 2, TestsTotal: 5}, svc.autoReq.Signals)
	assert.Equal(t, false, decode(t, w)["triggered"])

	w = do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/auto-trigger", map[string]any{
		"user_id": 1, "problem_id": 2, "tests_passed": 6, "tests_total": 5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "tests_total", decode(t, w)["field"])
}

func TestEvaluateAttempt(t *testing.T) {
	svc := &fakeService{}
	srv := New(svc, openStore(t), nil)
	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/attempts/evaluate", map[string]any{
		"problem": map[string]any{"description": "Reverse a list."},
		"code":    "def f(a): return a[len(a)]",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, svc.evalReq.Problem)
	assert.Equal(t, "Reverse a list.", svc.evalReq.Problem.Description)

	out := decode(t, w)
	assert.Equal(t, "index_error", out["error_pattern"])
	assert.Equal(t, "correctness", out["error_category"])
	assert.Equal(t, false, out["success"])
}

func TestSubmitFeedback(t *testing.T) {
	svc := &fakeService{}
	srv := New(svc, openStore(t), nil)

	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/9/feedback", map[string]any{"user_id": 1, "rating": 4, "text": "helpful"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, hints.FeedbackRequest{HintID: 9, UserID: 1, Rating: 4, Text: "helpful"}, svc.feedbackReq)

	w = do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/9/feedback", map[string]any{"user_id": 1, "rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "rating", decode(t, w)["field"])

	w = do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/abc/feedback", map[string]any{"user_id": 1, "rating": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", decode(t, w)["field"])
}

func TestProblems(t *testing.T) {
	srv := New(&fakeService{}, openStore(t), nil)
	h := srv.Handler()

	w := do(t, h, http.MethodPost, "/api/v1/problems", map[string]any{"title": "Two Sum", "description": "Find two numbers."})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "medium", created["difficulty"])
	id := int64(created["id"].(float64))

	w = do(t, h, http.MethodGet, fmt.Sprintf("/api/v1/problems/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Two Sum", decode(t, w)["title"])

	w = do(t, h, http.MethodGet, "/api/v1/problems/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/problems", map[string]any{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title", decode(t, w)["field"])

	w = do(t, h, http.MethodGet, "/api/v1/problems?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["problems"].([]any)
	assert.Len(t, list, 1)

	w = do(t, h, http.MethodGet, "/api/v1/problems?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserPatterns(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	p, err := st.CreateProblem(ctx, store.Problem{Title: "Two Sum"})
	require.NoError(t, err)
	for _, status := range []store.AttemptStatus{store.AttemptFailed, store.AttemptSuccess} {
		a := &store.Attempt{UserID: 5, ProblemID: p.ID, Code: "x", Status: status}
		if status == store.AttemptFailed {
			a.ErrorPattern = string(diagnosis.PatternLogicError)
		}
		require.NoError(t, st.CreateAttempt(ctx, a))
	}

	srv := New(&fakeService{}, st, nil)
	w := do(t, srv.Handler(), http.MethodGet, "/api/v1/users/5/patterns", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode(t, w)
	assert.EqualValues(t, 5, out["user_id"])
	assert.EqualValues(t, 2, out["total_attempts"])
	assert.EqualValues(t, 0.5, out["success_rate"])
	top := out["top_errors"].([]any)
	require.Len(t, top, 1)
	assert.Equal(t, "logic_error", top[0].(map[string]any)["pattern"])

	w = do(t, srv.Handler(), http.MethodGet, "/api/v1/users/0/patterns", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestEndToEnd drives the real service through the router.
func TestEndToEnd(t *testing.T) {
	st := openStore(t)
	mock := llm.NewMockProvider(
		llm.MockJSON(diagnosis.Evaluation{
			Success:     false,
			Reason:      "returns nothing for an empty list",
			Complexity:  "O(n)",
			EdgeCases:   []string{"empty list"},
			CodeQuality: "ok",
			Suggestions: []string{},
		}),
		llm.MockText("What should the function return when the list is empty?"),
		llm.MockJSON(hints.Scores{Safety: 1, Helpfulness: 0.8, Quality: 0.8, ProgressAlignment: 0.7, PedagogicalValue: 0.9}),
	)
	svc := hints.NewService(st, mock, nil, hints.DefaultConfig(), nil)
	svc.SetClock(func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) })
	srv := New(svc, st, nil)

	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/request", map[string]any{
		"user_id":    1,
		"problem_id": 42,
		"code":       "def first(xs): return xs[0]",
		"problem":    map[string]any{"title": "First Element", "description": "Return the first element or None."},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode(t, w)
	hint := out["hint"].(map[string]any)
	assert.Equal(t, "What should the function return when the list is empty?", hint["content"])
	assert.Equal(t, "edge_case_missing", out["attempt_evaluation"].(map[string]any)["error_pattern"])

	hintID := int64(hint["id"].(float64))
	w = do(t, srv.Handler(), http.MethodPost, fmt.Sprintf("/api/v1/hints/%d/feedback", hintID), map[string]any{"user_id": 1, "rating": 5})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/9999/feedback", map[string]any{"user_id": 1, "rating": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The provider is exhausted; the next request fails upstream.
	mock.Fallback = func(llm.Request) llm.MockResponse { return llm.MockResponse{Err: &llm.ErrProviderUnavailable{}} }
	w = do(t, srv.Handler(), http.MethodPost, "/api/v1/hints/request", map[string]any{"user_id": 1, "problem_id": 42, "code": "pass"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
