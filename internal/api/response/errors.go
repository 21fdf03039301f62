package response

import (
	"fmt"
	"net/http"

	"github.com/tsmart/voyage-api/internal/core/domain"
)

// APIError is an error that already knows its HTTP status and envelope code.
// Middleware and handlers return it; the HTTP error handler renders it.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func ValidationFailed(fields []domain.FieldError, message string) *APIError {
	if message == "" {
		message = "Validation failed"
	}
	if fields == nil {
		fields = []domain.FieldError{}
	}
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Message: message,
		Details: map[string]any{"errors": fields},
	}
}

func BadRequest(message string) *APIError {
	if message == "" {
		message = "Bad request"
	}
	return &APIError{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: message}
}

func Unauthorized(message string) *APIError {
	if message == "" {
		message = "Authentication required"
	}
	return &APIError{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

func Forbidden(message string) *APIError {
	if message == "" {
		message = "Insufficient permissions"
	}
	return &APIError{Status: http.StatusForbidden, Code: CodeForbidden, Message: message}
}

// NotFound reads "<resource> with ID <id> not found", or "<resource> not found"
// without an id.
func NotFound(resource, id string) *APIError {
	if resource == "" {
		resource = "Resource"
	}
	message := resource + " not found"
	details := map[string]any{"resource": resource}
	if id != "" {
		message = fmt.Sprintf("%s with ID %s not found", resource, id)
		details["id"] = id
	}
	return &APIError{Status: http.StatusNotFound, Code: CodeNotFound, Message: message, Details: details}
}

func Conflict(message string, details any) *APIError {
	return &APIError{Status: http.StatusConflict, Code: CodeConflict, Message: message, Details: details}
}

func TooManyRequests(message string) *APIError {
	if message == "" {
		message = "Too many requests"
	}
	return &APIError{Status: http.StatusTooManyRequests, Code: CodeRateLimit, Message: message}
}

func Internal(message string) *APIError {
	if message == "" {
		message = "Internal server error"
	}
	return &APIError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: message}
}

// Unavailable reports failing dependencies with 503.
func Unavailable(message string, details any) *APIError {
	if message == "" {
		message = "Service unavailable"
	}
	return &APIError{Status: http.StatusServiceUnavailable, Code: CodeUnavailable, Message: message, Details: details}
}
