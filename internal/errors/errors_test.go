package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("target_url", "URL cannot be empty")

	assert.Equal(t, "validation error in field 'target_url': URL cannot be empty", err.Error())
	assert.ErrorIs(t, err, ErrInvalidURL)

	wrapped := fmt.Errorf("create entry: %w", err)
	assert.True(t, IsValidationError(wrapped))
	assert.Equal(t, "target_url", GetValidationError(wrapped).Field)
	assert.Nil(t, GetValidationError(errors.New("other")))
}

func TestValidationError_NoField(t *testing.T) {
	err := NewValidationError("", "bad input")
	assert.Equal(t, "validation error: bad input", err.Error())
}

func TestBusinessError_IsByCode(t *testing.T) {
	cause := errors.New("after 10 attempts")
	err := fmt.Errorf("generate key: %w",
		NewBusinessError(CodeKeyspaceExhausted, "failed to generate a unique key", cause))

	assert.ErrorIs(t, err, ErrKeyspaceExhausted)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrDatabaseOperation)
	assert.True(t, IsBusinessError(err))
	assert.Equal(t, CodeKeyspaceExhausted, GetBusinessError(err).Code)
}

func TestNewDatabaseError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseError("failed to get URL", cause)

	assert.Equal(t, "failed to get URL: connection refused", err.Error())
	assert.ErrorIs(t, err, ErrDatabaseOperation)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsBusinessError(errors.New("plain")))
}
