package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	msgs   []string
	fields []map[string]interface{}
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.msgs = append(l.msgs, msg)
	l.fields = append(l.fields, fields)
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected Category
	}{
		{ErrCodeMissingCredential, CategoryConfig},
		{ErrCodeMalformedProfile, CategoryInput},
		{ErrCodeMissingFile, CategoryResource},
		{ErrCodeAuthFailure, CategoryUpstream},
		{ErrCodeQuotaFailure, CategoryUpstream},
		{ErrCodeContextLengthExceeded, CategoryUpstream},
		{ErrCodeResponseMalformed, CategoryUpstream},
		{ErrCodeInvalidStateTransition, CategoryInternal},
		{ErrorCode("SOMETHING_ELSE"), CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorCategory(tt.code))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(NewMissingCredentialError("UPSTAGE_API_KEY")))
	assert.Equal(t, 3, ExitCode(NewMalformedProfileError("empty")))
	assert.Equal(t, 4, ExitCode(NewMissingFileError("/tmp/nope.pdf")))
	assert.Equal(t, 5, ExitCode(NewContextLengthExceededError("solar", "too long")))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("boom")))
}

func TestStandardError_WrappingAndIs(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := fmt.Errorf("plan step: %w", NewUpstreamUnavailableError("solar", cause))

	assert.True(t, stderrors.Is(err, &StandardError{Code: ErrCodeUpstreamUnavailable}))
	assert.False(t, stderrors.Is(err, &StandardError{Code: ErrCodeAuthFailure}))
	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, HasCode(err, ErrCodeUpstreamUnavailable))

	stdErr, ok := As(err)
	require.True(t, ok)
	assert.True(t, stdErr.Retryable)
	assert.True(t, IsRetryableErrorCode(stdErr.Code))
}

func TestConstructors_RetryableFollowsCode(t *testing.T) {
	assert.True(t, NewUpstreamTimeoutError("solar", nil).Retryable)
	assert.False(t, NewContextLengthExceededError("solar", "too long").Retryable)
	assert.False(t, NewAuthFailureError("solar", "401").Retryable)
	assert.False(t, NewInternalError(nil).Retryable)
}

func TestNormalize_WrapsPlainErrors(t *testing.T) {
	stdErr := Normalize(fmt.Errorf("unexpected"))
	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.Equal(t, CategoryInternal, stdErr.Category())
	assert.Nil(t, Normalize(nil))
}

func TestErrorHandler_Handle(t *testing.T) {
	var out bytes.Buffer
	log := &recordingLogger{}
	h := NewErrorHandler(log, &out)

	code := h.Handle(NewUpstreamRejectedError("document-parse", 400, "bad pdf"))

	assert.Equal(t, 5, code)
	assert.Contains(t, out.String(), "error [UPSTREAM/UPSTREAM_REJECTED]")
	assert.Contains(t, out.String(), "bad pdf")
	require.Len(t, log.fields, 1)
	assert.Equal(t, "UPSTREAM_REJECTED", log.fields[0]["errorCode"])
	assert.Equal(t, 400, log.fields[0]["status"])
	assert.Equal(t, 5, log.fields[0]["exitCode"])
	assert.Equal(t, []string{"exiting with error"}, log.msgs)
}

func TestErrorHandler_NilError(t *testing.T) {
	var out bytes.Buffer
	h := NewErrorHandler(nil, &out)
	assert.Equal(t, 0, h.Handle(nil))
	assert.Empty(t, out.String())
}
