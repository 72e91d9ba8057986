package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := TransportError(502, fmt.Errorf("bad gateway"))
	wrapped := Wrap(base, "upload failed")

	assert.Equal(t, CodeTransportError, GetCode(wrapped))
	assert.True(t, HasCode(wrapped, CodeTransportError))
	assert.Contains(t, wrapped.Error(), "upload failed")

	var appErr *AppError
	assert.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, 502, appErr.Status)
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("boom"), "context")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "context: boom", wrapped.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestTransportErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"network failure", 0, "upload transport failed"},
		{"http status", 500, "upload rejected with HTTP 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TransportError(tt.status, nil)
			if err.Error() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestRenderErrorCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", RenderError("otras", fmt.Errorf("draw failed")))
	assert.True(t, IsAppError(err))
	assert.True(t, HasCode(err, CodeRenderError))
	assert.False(t, HasCode(err, CodeTransportError))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}
