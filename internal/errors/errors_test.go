package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "Conversation not found")
		assert.Equal(t, "NOT_FOUND: Conversation not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("unexpected end of JSON input")
		err := Wrap(ErrCodeStorageCorrupt, "Stored conversation state is corrupt", cause)
		assert.Contains(t, err.Error(), "STORAGE_CORRUPT")
		assert.Contains(t, err.Error(), "Stored conversation state is corrupt")
		assert.Contains(t, err.Error(), "unexpected end of JSON input")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "sender", "reason": "unknown value"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"NotFound", func() *AppError { return NotFound("Conversation") }, ErrCodeNotFound},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"InvalidInput", func() *AppError { return InvalidInput("sender", "unknown") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("text") }, ErrCodeMissingRequired},
		{"Storage", func() *AppError { return Storage(errors.New("x")) }, ErrCodeStorage},
		{"StorageCorrupt", func() *AppError { return StorageCorrupt(errors.New("x")) }, ErrCodeStorageCorrupt},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.constructor()
			assert.Equal(t, tc.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestStorageCorrupt(t *testing.T) {
	t.Run("wraps the decode error", func(t *testing.T) {
		cause := errors.New("invalid character '}'")
		err := StorageCorrupt(cause)
		assert.Equal(t, ErrCodeStorageCorrupt, err.Code)
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestIsAppError(t *testing.T) {
	t.Run("returns true for AppError", func(t *testing.T) {
		err := New(ErrCodeNotFound, "test")
		assert.True(t, IsAppError(err))
	})

	t.Run("returns false for standard error", func(t *testing.T) {
		err := errors.New("standard error")
		assert.False(t, IsAppError(err))
	})
}

func TestAsAppError(t *testing.T) {
	t.Run("extracts AppError", func(t *testing.T) {
		original := New(ErrCodeNotFound, "Conversation not found")
		extracted, ok := AsAppError(original)
		assert.True(t, ok)
		assert.Equal(t, original, extracted)
	})

	t.Run("returns false for non-AppError", func(t *testing.T) {
		err := errors.New("standard error")
		extracted, ok := AsAppError(err)
		assert.False(t, ok)
		assert.Nil(t, extracted)
	})
}

func TestGetCode(t *testing.T) {
	t.Run("returns code for AppError", func(t *testing.T) {
		err := New(ErrCodeNotFound, "test")
		assert.Equal(t, ErrCodeNotFound, GetCode(err))
	})

	t.Run("returns ErrCodeInternal for standard error", func(t *testing.T) {
		err := errors.New("standard error")
		assert.Equal(t, ErrCodeInternal, GetCode(err))
	})
}
