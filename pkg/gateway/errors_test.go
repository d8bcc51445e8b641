package gateway

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "gateway error body",
			text: `{"error":"unknown function basic_tset"}`,
			want: "unknown function basic_tset",
		},
		{
			name: "non-json body falls back to raw text",
			text: "<html>bad gateway</html>",
			want: "<html>bad gateway</html>",
		},
		{
			name: "json without error field falls back",
			text: `{"detail":"nope"}`,
			want: `{"detail":"nope"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewError(502, tt.text)
			assert.Equal(t, tt.want, err.Message())
			assert.Contains(t, err.Error(), "status 502")
		})
	}
}

func TestInternalErrorUnwrap(t *testing.T) {
	err := NewInternalError("reading gateway response", io.ErrUnexpectedEOF)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Contains(t, err.Error(), "tensorzero internal error")

	bare := NewInternalError("no cause", nil)
	assert.Nil(t, bare.Unwrap())
}

func TestValidationErrorString(t *testing.T) {
	err := NewValidationError("input.messages[0].role", `role must be "user" or "assistant", got "system"`)
	assert.Contains(t, err.Error(), `"input.messages[0].role"`)
}
