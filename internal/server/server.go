// Package server exposes the hint service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/hintly/internal/hints"
	"github.com/abhisek/hintly/internal/logger"
	"github.com/abhisek/hintly/internal/patterns"
	"github.com/abhisek/hintly/internal/store"
)

const shutdownTimeout = 10 * time.Second

// HintService is the hint workflow the handlers drive.
type HintService interface {
	RequestHint(ctx context.Context, req hints.HintRequest) (*hints.Result, error)
	CheckAutoTrigger(ctx context.Context, req hints.AutoTriggerRequest) (*hints.AutoTriggerResult, error)
	EvaluateAttempt(ctx context.Context, req hints.EvaluateRequest) (*hints.AttemptEvaluation, error)
	SubmitFeedback(ctx context.Context, req hints.FeedbackRequest) (*store.Feedback, error)
}

// Store is the storage the problem, pattern and health handlers read.
type Store interface {
	patterns.Source
	CreateProblem(ctx context.Context, p store.Problem) (*store.Problem, error)
	GetProblem(ctx context.Context, id int64) (*store.Problem, error)
	ListProblems(ctx context.Context, limit int) ([]store.Problem, error)
	Ping(ctx context.Context) error
}

// Server routes HTTP requests to the hint service.
type Server struct {
	svc    HintService
	store  Store
	log    *logger.Logger
	engine *gin.Engine
}

// New builds the router. log may be nil.
func New(svc HintService, st Store, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{svc: svc, store: st, log: log.With("component", "http")}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.log))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.POST("/hints/request", s.requestHint)
	v1.POST("/hints/auto-trigger", s.autoTrigger)
	v1.POST("/hints/:id/feedback", s.submitFeedback)
	v1.POST("/attempts/evaluate", s.evaluateAttempt)
	v1.POST("/problems", s.createProblem)
	v1.GET("/problems", s.listProblems)
	v1.GET("/problems/:id", s.getProblem)
	v1.GET("/users/:id/patterns", s.userPatterns)

	s.engine = r
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
