package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"booking/internal/domain"
)

const internalErrorMessage = "An unexpected error occurred. Please try again later."

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
}

// MessageResponse acknowledges a command that returns no resource.
type MessageResponse struct {
	Message   string `json:"message"`
	BookingID string `json:"bookingId"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Internal failures are logged by the request logger and never echoed to the caller.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)

	message := internalErrorMessage
	var de *domain.Error
	if code != http.StatusInternalServerError && errors.As(err, &de) {
		message = de.Message
	}

	_ = c.Error(err)
	writeError(c, code, message)
}

// writeError writes the error body for an explicit status and message.
func writeError(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    code,
		Error:     http.StatusText(code),
		Message:   message,
	})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps business error kinds to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindUnauthorized:
		return http.StatusForbidden

	// Both malformed input and disallowed transitions are client errors.
	case domain.KindInvalidInput, domain.KindInvalidState:
		return http.StatusBadRequest

	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
