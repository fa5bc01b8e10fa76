package hostfuncs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse_ToJSON(t *testing.T) {
	tests := []struct {
		name     string
		err      ErrorResponse
		expected string
	}{
		{
			name:     "validation",
			err:      NewValidationError("key is required"),
			expected: `{"error":"VALIDATION_ERROR","message":"key is required","code":400}`,
		},
		{
			name:     "not found",
			err:      NewNotFoundError("session_clear"),
			expected: `{"error":"NOT_FOUND","message":"unknown host function: session_clear","code":404}`,
		},
		{
			name:     "internal",
			err:      NewInternalError("store unavailable"),
			expected: `{"error":"INTERNAL_ERROR","message":"store unavailable","code":500}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.ToJSON()
			require.NotNil(t, got)
			assert.JSONEq(t, tt.expected, string(got))
		})
	}
}

func TestNewPanicError(t *testing.T) {
	tests := []struct {
		name       string
		panicValue any
		wantMsg    string
	}{
		{name: "string", panicValue: "oops", wantMsg: "panic: oops"},
		{name: "error", panicValue: errors.New("nil map"), wantMsg: "panic: nil map"},
		{name: "other", panicValue: 42, wantMsg: "panic: panic recovered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPanicError(tt.panicValue)
			assert.Equal(t, "INTERNAL_ERROR", err.Error)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, 500, err.Code)
		})
	}
}
