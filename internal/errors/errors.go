package errors

import (
	"errors"
	"fmt"
)

var (
	ErrURLNotFound = errors.New("URL not found")
	ErrInvalidURL  = errors.New("invalid URL")
	// ErrKeyConflict is returned by the store when an insert collides with an
	// existing key or secret key.
	ErrKeyConflict = errors.New("key already exists")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap lets callers match any validation failure with errors.Is(err, ErrInvalidURL).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidURL
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

type BusinessError struct {
	Code    string
	Message string
	Cause   error
}

func (e *BusinessError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Cause
}

// Is matches business errors by code, so a wrapped copy still compares equal
// to the package-level sentinel.
func (e *BusinessError) Is(target error) bool {
	var other *BusinessError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

func NewBusinessError(code, message string, cause error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

const (
	CodeKeyspaceExhausted = "KEYSPACE_EXHAUSTED"
	CodeDatabaseError     = "DATABASE_ERROR"
)

var (
	ErrKeyspaceExhausted = NewBusinessError(CodeKeyspaceExhausted, "failed to generate a unique key", nil)
	ErrDatabaseOperation = NewBusinessError(CodeDatabaseError, "database operation failed", nil)
)

// NewDatabaseError wraps a store failure as a DATABASE_ERROR business error.
func NewDatabaseError(message string, cause error) *BusinessError {
	return NewBusinessError(CodeDatabaseError, message, cause)
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}

func GetValidationError(err error) *ValidationError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}
	return nil
}

// GetBusinessError returns the outermost BusinessError in the chain, or nil.
func GetBusinessError(err error) *BusinessError {
	var businessErr *BusinessError
	if errors.As(err, &businessErr) {
		return businessErr
	}
	return nil
}
