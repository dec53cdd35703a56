package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeIndexOutOfRange, "trace %d of %d", 5, 3)

	assert.Equal(t, ErrCodeIndexOutOfRange, err.Code)
	assert.Equal(t, "trace 5 of 3", err.Message)
	assert.Equal(t, "INDEX_OUT_OF_RANGE: trace 5 of 3", err.Error())
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeTransport, cause, "publish")

	assert.Equal(t, ErrCodeTransport, err.Code)
	assert.Same(t, cause, err.Cause)
	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "TRANSPORT: publish: connection refused", err.Error())
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeUnknownTag, "test"),
			code:     ErrCodeUnknownTag,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeUnknownTag, "test"),
			code:     ErrCodeTransport,
			expected: false,
		},
		{
			name:     "outer code of wrapped error",
			err:      Wrap(ErrCodeTransport, New(ErrCodeInvalidAddress, "inner"), "outer"),
			code:     ErrCodeTransport,
			expected: true,
		},
		{
			name:     "inner code of wrapped error",
			err:      Wrap(ErrCodeTransport, New(ErrCodeInvalidAddress, "inner"), "outer"),
			code:     ErrCodeInvalidAddress,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("context: %w", New(ErrCodeNotFound, "missing")),
			code:     ErrCodeNotFound,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Is(tt.err, tt.code))
		})
	}
}

func TestSentinelMatching(t *testing.T) {
	sentinel := New(ErrCodeIndexOutOfRange, "index out of range")
	err := fmt.Errorf("get trace: %w", New(ErrCodeIndexOutOfRange, "index -4 with 3 traces"))

	assert.True(t, errors.Is(err, sentinel))
	assert.False(t, errors.Is(err, New(ErrCodeNotFound, "x")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeTransport, GetCode(New(ErrCodeTransport, "x")))
	assert.Equal(t, ErrCodeTransport, GetCode(fmt.Errorf("w: %w", New(ErrCodeTransport, "x"))))
	assert.Equal(t, Code(""), GetCode(errors.New("plain")))
}

func TestUserMessage(t *testing.T) {
	require.Equal(t, "bad index", UserMessage(New(ErrCodeIndexOutOfRange, "bad index")))
	require.Equal(t, "plain", UserMessage(errors.New("plain")))
}
