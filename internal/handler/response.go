package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"paygate/internal/parser"
	"paygate/internal/repository"
	"paygate/internal/service"
	"paygate/internal/session"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/registry errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var lockedErr *session.LockedError
	var parseErr *parser.ParseError

	switch {
	// Resource locked - retryable after the hinted delay
	case errors.As(err, &lockedErr):
		return http.StatusLocked

	// Validation errors - Bad Request
	case errors.As(err, &parseErr),
		errors.Is(err, service.ErrInvalidContact),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrMissingPayload),
		errors.Is(err, service.ErrMissingFields):
		return http.StatusBadRequest

	// Bad shared secret
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Attempt ceiling - session-scoped throttle
	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests

	// Concurrent reconciliation on the same amount
	case errors.Is(err, service.ErrConfirmationInFlight):
		return http.StatusConflict

	// Durable store failures - safe to retry, the write is idempotent
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
