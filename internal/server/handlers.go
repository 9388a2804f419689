package server

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/abhisek/hintly/internal/hints"
	"github.com/abhisek/hintly/internal/patterns"
	"github.com/abhisek/hintly/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

type problemBody struct {
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description" validate:"max=20000"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

func (p *problemBody) data() *hints.ProblemData {
	if p == nil {
		return nil
	}
	return &hints.ProblemData{Title: p.Title, Description: p.Description, Difficulty: p.Difficulty}
}

type signalsBody struct {
	LastAttemptStatus string `json:"last_attempt_status" validate:"max=32"`
	LastError         string `json:"last_error" validate:"max=4000"`
	TestsPassed       int    `json:"tests_passed" validate:"gte=0"`
	TestsTotal        int    `json:"tests_total" validate:"gte=0,gtefield=TestsPassed"`
}

func (s signalsBody) signals() hints.AttemptSignals {
	return hints.AttemptSignals{
		Status:      s.LastAttemptStatus,
		Error:       s.LastError,
		TestsPassed: s.TestsPassed,
		TestsTotal:  s.TestsTotal,
	}
}

type hintRequestBody struct {
	UserID    int64        `json:"user_id" validate:"required,gt=0"`
	ProblemID int64        `json:"problem_id" validate:"required,gt=0"`
	Code      string       `json:"code" validate:"required,max=65536"`
	Problem   *problemBody `json:"problem"`
}

type autoTriggerBody struct {
	UserID    int64  `json:"user_id" validate:"required,gt=0"`
	ProblemID int64  `json:"problem_id" validate:"required,gt=0"`
	Code      string `json:"code" validate:"max=65536"`
	signalsBody
}

type evaluateBody struct {
	ProblemID int64        `json:"problem_id" validate:"gte=0"`
	Problem   *problemBody `json:"problem"`
	Code      string       `json:"code" validate:"required,max=65536"`
	signalsBody
}

type feedbackBody struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text" validate:"max=2000"`
}

type createProblemBody struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=20000"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

type problemView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Difficulty  string    `json:"difficulty"`
	CreatedAt   time.Time `json:"created_at"`
}

func viewProblem(p *store.Problem) problemView {
	return problemView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Difficulty:  p.Difficulty,
		CreatedAt:   p.CreatedAt,
	}
}

type feedbackView struct {
	ID        int64     `json:"id"`
	HintID    int64     `json:"hint_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// bind decodes the JSON body into dst and validates it.
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &hints.ClientInputError{Field: "body", Reason: "must not be empty"}
		}
		return &hints.ClientInputError{Field: "body", Reason: "malformed JSON"}
	}
	return validate.Struct(dst)
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &hints.ClientInputError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.log.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) requestHint(c *gin.Context) {
	var body hintRequestBody
	if err := bind(c, &body); err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.svc.RequestHint(c.Request.Context(), hints.HintRequest{
		UserID:    body.UserID,
		ProblemID: body.ProblemID,
		Code:      body.Code,
		Problem:   body.Problem.data(),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) autoTrigger(c *gin.Context) {
	var body autoTriggerBody
	if err := bind(c, &body); err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.svc.CheckAutoTrigger(c.Request.Context(), hints.AutoTriggerRequest{
		UserID:    body.UserID,
		ProblemID: body.ProblemID,
		Code:      body.Code,
		Signals:   body.signals(),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) submitFeedback(c *gin.Context) {
	hintID, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var body feedbackBody
	if err := bind(c, &body); err != nil {
		s.fail(c, err)
		return
	}
	f, err := s.svc.SubmitFeedback(c.Request.Context(), hints.FeedbackRequest{
		HintID: hintID,
		UserID: body.UserID,
		Rating: body.Rating,
		Text:   body.Text,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedbackView{
		ID:        f.ID,
		HintID:    f.HintID,
		UserID:    f.UserID,
		Rating:    f.Rating,
		Text:      f.Text,
		CreatedAt: f.CreatedAt,
	})
}

func (s *Server) evaluateAttempt(c *gin.Context) {
	var body evaluateBody
	if err := bind(c, &body); err != nil {
		s.fail(c, err)
		return
	}
	sig := body.signals()
	eval, err := s.svc.EvaluateAttempt(c.Request.Context(), hints.EvaluateRequest{
		ProblemID: body.ProblemID,
		Problem:   body.Problem.data(),
		Code:      body.Code,
		Signals:   &sig,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

func (s *Server) createProblem(c *gin.Context) {
	var body createProblemBody
	if err := bind(c, &body); err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.store.CreateProblem(c.Request.Context(), store.Problem{
		Title:       strings.TrimSpace(body.Title),
		Description: body.Description,
		Difficulty:  body.Difficulty,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewProblem(p))
}

func (s *Server) listProblems(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.fail(c, &hints.ClientInputError{Field: "limit", Reason: "must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}
	problems, err := s.store.ListProblems(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]problemView, len(problems))
	for i := range problems {
		out[i] = viewProblem(&problems[i])
	}
	c.JSON(http.StatusOK, gin.H{"problems": out})
}

func (s *Server) getProblem(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.store.GetProblem(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.fail(c, &hints.NotFoundError{Resource: "problem", ID: id})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewProblem(p))
}

func (s *Server) userPatterns(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := patterns.Load(c.Request.Context(), s.store, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
