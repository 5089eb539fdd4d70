package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewAppValidationError("window must be positive"),
			expected: "[VALIDATION] window must be positive",
		},
		{
			name:     "with cause",
			err:      NewNetworkError("fetch dataset", errors.New("connection refused")),
			expected: "[NETWORK] fetch dataset: connection refused",
		},
		{
			name:     "not found",
			err:      NewNotFoundError("summary", nil),
			expected: "[NOT_FOUND] summary not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_UnwrapPreservesCause(t *testing.T) {
	sentinel := errors.New("dial tcp: timeout")
	err := fmt.Errorf("pipeline: %w", NewNetworkError("fetch dataset", sentinel))

	assert.True(t, errors.Is(err, sentinel))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeNetwork, appErr.Type)
	assert.True(t, IsType(err, ErrTypeNetwork))
	assert.False(t, IsType(err, ErrTypeStorage))
	assert.False(t, IsType(sentinel, ErrTypeNetwork))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewStorageError("write summary", nil).
		WithContext("path", "data/china-energy-summary.json").
		WithContext("entries", 5)

	assert.Equal(t, "data/china-energy-summary.json", err.Context["path"])
	assert.Equal(t, 5, err.Context["entries"])

	bare := &AppError{Type: ErrTypeConfig, Message: "bad"}
	bare.WithContext("k", "v")
	assert.Equal(t, "v", bare.Context["k"])
}

func TestHelperConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want ErrorType
	}{
		{"network", NewNetworkError("m", nil), ErrTypeNetwork},
		{"parsing", NewParsingError("m", nil), ErrTypeParsing},
		{"storage", NewStorageError("m", nil), ErrTypeStorage},
		{"validation", NewAppValidationError("m"), ErrTypeValidation},
		{"not found", NewNotFoundError("m", nil), ErrTypeNotFound},
		{"config", NewConfigError("m", nil), ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}
