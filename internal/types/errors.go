package types

import (
	"errors"
	"strings"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateEmail       = errors.New("email address is already registered")
	ErrAuthenticationFailed = errors.New("invalid email or password")
	ErrUnauthorized         = errors.New("authentication required")
	ErrForbidden            = errors.New("action forbidden")
	ErrNotFound             = errors.New("requested item not found")
)

// FieldError describes one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation. errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
