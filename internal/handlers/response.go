package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
)

func errInvalidBody() error {
	return fmt.Errorf("%w: invalid request body", apperr.ErrValidationFailure)
}

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondAppError maps the service error taxonomy onto HTTP statuses so every
// handler reports failures the same way.
func RespondAppError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, apperr.ErrValidationFailure):
		status, code = http.StatusBadRequest, "validation_failure"
	case errors.Is(err, apperr.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, apperr.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperr.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apperr.ErrUpstreamFailure):
		status, code = http.StatusBadGateway, "upstream_failure"
	case errors.Is(err, apperr.ErrMalformedResponse):
		status, code = http.StatusBadGateway, "malformed_response"
	case errors.Is(err, apperr.ErrUnconfigured):
		status, code = http.StatusServiceUnavailable, "unconfigured"
	case errors.Is(err, apperr.ErrPersistenceFailure):
		status, code = http.StatusInternalServerError, "persistence_failure"
	}
	RespondError(c, status, code, err)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
