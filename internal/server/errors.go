package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/chargedesk/internal/assistant"
	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, _, message := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError returns the status, the error type used in logs and the message
// sent to the client. Messages never carry store details.
func mapError(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	case errors.Is(err, domain.ErrCasesUnavailable):
		return http.StatusInternalServerError, "service_unavailable", "service unavailable"
	case errors.Is(err, domain.ErrInvalidChargebackID):
		return http.StatusBadRequest, "validation_error", "chargeback id is required"
	case errors.Is(err, assistant.ErrEmptyUpdate):
		return http.StatusBadRequest, "validation_error", "research or analysis is required"
	case errors.Is(err, assistant.ErrInvalidPayload):
		return http.StatusBadRequest, "validation_error", "payload must be valid json"
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "validation_error", "invalid request"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func classifyErrorForLog(err error) (string, string) {
	_, errorType, _ := mapError(err)
	code := "unknown"
	for _, known := range []error{
		domain.ErrCasesUnavailable,
		domain.ErrInvalidChargebackID,
		assistant.ErrEmptyUpdate,
		assistant.ErrInvalidPayload,
		ErrInvalidRequest,
		ErrNotFound,
	} {
		if errors.Is(err, known) {
			code = known.Error()
			break
		}
	}
	return errorType, code
}
