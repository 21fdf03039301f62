package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound  = errors.New("resource not found")
	ErrConflict  = errors.New("resource already exists")
	ErrForbidden = errors.New("insufficient permissions")

	ErrUserExists          = errors.New("user with this email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserInactive        = errors.New("user not found or inactive")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrIncorrectPassword   = errors.New("current password is incorrect")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	ErrYachtNotFound          = errors.New("yacht not found")
	ErrYachtHasActiveCharters = errors.New("cannot delete yacht with active charters")

	// ErrDataStore wraps failures talking to the backing store.
	ErrDataStore = errors.New("data store failure")
)

// FieldError describes a single failed constraint of a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationError carries field-level failures of a request payload.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return e.Message + ": " + strings.Join(msgs, "; ")
}

// NewValidationError builds a ValidationError with the default message.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Message: "Validation failed", Fields: fields}
}
