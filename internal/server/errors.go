package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/abhisek/hintly/internal/hints"
	"github.com/abhisek/hintly/internal/store"
)

type errorBody struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Stage     string `json:"stage,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps the service error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var (
		input *hints.ClientInputError
		nf    *hints.NotFoundError
		gen   *hints.GenerationError
		verr  validator.ValidationErrors
	)
	switch {
	case errors.As(err, &input), errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &nf), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &gen):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error(), RequestID: c.GetString("request_id")}

	var (
		input *hints.ClientInputError
		gen   *hints.GenerationError
		verr  validator.ValidationErrors
	)
	switch {
	case errors.As(err, &input):
		body.Field = input.Field
	case errors.As(err, &verr):
		body.Field = verr[0].Field()
		body.Error = "invalid " + body.Field + ": failed " + verr[0].Tag() + " check"
	case errors.As(err, &gen):
		body.Stage = gen.Stage
		body.Error = gen.Stage + " failed"
	case status == http.StatusInternalServerError:
		s.log.Error("internal error", "error", err, "request_id", body.RequestID)
		body.Error = "internal error"
	}
	if status == http.StatusBadGateway {
		s.log.Warn("generation failed", "error", err, "request_id", body.RequestID)
	}
	c.AbortWithStatusJSON(status, body)
}
