// Package errors provides the standardized error taxonomy surfaced by the CLI.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// Category groups error codes into the classes the CLI reports on.
type Category string

const (
	CategoryConfig   Category = "CONFIG"
	CategoryInput    Category = "INPUT"
	CategoryResource Category = "RESOURCE"
	CategoryUpstream Category = "UPSTREAM"
	CategoryInternal Category = "INTERNAL"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	ErrCodeInvalidConfig     ErrorCode = "INVALID_CONFIG"

	ErrCodeMalformedProfile  ErrorCode = "MALFORMED_PROFILE"
	ErrCodeAnswerUnavailable ErrorCode = "ANSWER_UNAVAILABLE"

	ErrCodeMissingFile    ErrorCode = "MISSING_FILE"
	ErrCodeUnreadableFile ErrorCode = "UNREADABLE_FILE"

	ErrCodeParseFailure          ErrorCode = "PARSE_FAILURE"
	ErrCodeAuthFailure           ErrorCode = "AUTH_FAILURE"
	ErrCodeQuotaFailure          ErrorCode = "QUOTA_FAILURE"
	ErrCodeContextLengthExceeded ErrorCode = "CONTEXT_LENGTH_EXCEEDED"
	ErrCodeResponseMalformed     ErrorCode = "RESPONSE_MALFORMED"
	ErrCodeUpstreamRejected      ErrorCode = "UPSTREAM_REJECTED"
	ErrCodeUpstreamUnavailable   ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamTimeout       ErrorCode = "UPSTREAM_TIMEOUT"

	ErrCodeInvalidStateTransition ErrorCode = "INVALID_STATE_TRANSITION"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

var codeCategories = map[ErrorCode]Category{
	ErrCodeMissingCredential:      CategoryConfig,
	ErrCodeInvalidConfig:          CategoryConfig,
	ErrCodeMalformedProfile:       CategoryInput,
	ErrCodeAnswerUnavailable:      CategoryInput,
	ErrCodeMissingFile:            CategoryResource,
	ErrCodeUnreadableFile:         CategoryResource,
	ErrCodeParseFailure:           CategoryUpstream,
	ErrCodeAuthFailure:            CategoryUpstream,
	ErrCodeQuotaFailure:           CategoryUpstream,
	ErrCodeContextLengthExceeded:  CategoryUpstream,
	ErrCodeResponseMalformed:      CategoryUpstream,
	ErrCodeUpstreamRejected:       CategoryUpstream,
	ErrCodeUpstreamUnavailable:    CategoryUpstream,
	ErrCodeUpstreamTimeout:        CategoryUpstream,
	ErrCodeInvalidStateTransition: CategoryInternal,
	ErrCodeInternal:               CategoryInternal,
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s[%s]: %s (%s)", e.Category(), e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Category(), e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches another StandardError by code, so callers can compare against
// a bare &StandardError{Code: ...}.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Category returns the class of the error code.
func (e *StandardError) Category() Category {
	return GetErrorCategory(e.Code)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 2. Error Constructors
// ==========================

// NewMissingCredentialError reports a required secret that is not set.
func NewMissingCredentialError(name string) *StandardError {
	return newError(ErrCodeMissingCredential, "Required API credential is not set", fmt.Sprintf("variable: %s", name), nil)
}

func NewInvalidConfigError(details string, err error) *StandardError {
	return newError(ErrCodeInvalidConfig, "Configuration is invalid", details, err)
}

// NewMalformedProfileError reports a profile string that carries no usable segment.
func NewMalformedProfileError(details string) *StandardError {
	return newError(ErrCodeMalformedProfile, "Profile string could not be parsed", details, nil)
}

func NewAnswerUnavailableError(question string, err error) *StandardError {
	return newError(ErrCodeAnswerUnavailable, "No answer could be read for a clarifying question", fmt.Sprintf("question: %s", question), err)
}

// NewMissingFileError reports a policy document that does not exist.
func NewMissingFileError(path string) *StandardError {
	return newError(ErrCodeMissingFile, "Policy document not found", fmt.Sprintf("path: %s", path), nil)
}

func NewUnreadableFileError(path string, err error) *StandardError {
	return newError(ErrCodeUnreadableFile, "Policy document could not be read", fmt.Sprintf("path: %s, error: %s", path, causeText(err)), err)
}

// NewParseFailureError reports a document parse call that did not produce usable output.
func NewParseFailureError(details string, err error) *StandardError {
	return newError(ErrCodeParseFailure, "Document parse failed", details, err)
}

func NewAuthFailureError(service string, details string) *StandardError {
	return newError(ErrCodeAuthFailure, fmt.Sprintf("Authentication with '%s' failed; check the API key or billing state", service), details, nil)
}

func NewQuotaFailureError(service string, details string) *StandardError {
	return newError(ErrCodeQuotaFailure, fmt.Sprintf("Quota exceeded for '%s'", service), details, nil)
}

func NewContextLengthExceededError(service string, details string) *StandardError {
	return newError(ErrCodeContextLengthExceeded, fmt.Sprintf("Request to '%s' exceeded the model context length", service), details, nil)
}

// NewResponseMalformedError reports model output whose structure could not be recovered.
func NewResponseMalformedError(stage string, details string) *StandardError {
	return newError(ErrCodeResponseMalformed, fmt.Sprintf("Malformed model response during %s", stage), details, nil)
}

func NewUpstreamRejectedError(service string, status int, details string) *StandardError {
	return newError(ErrCodeUpstreamRejected, fmt.Sprintf("Service '%s' rejected the request (status %d)", service, status), details, nil).
		WithMetadata("status", status)
}

func NewUpstreamUnavailableError(service string, err error) *StandardError {
	return newError(ErrCodeUpstreamUnavailable, fmt.Sprintf("Service '%s' is unavailable", service), causeText(err), err)
}

func NewUpstreamTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeUpstreamTimeout, fmt.Sprintf("Service '%s' timeout", service), causeText(err), err)
}

func NewInvalidStateTransitionError(from, to string) *StandardError {
	return newError(ErrCodeInvalidStateTransition, "Unexpected state transition", fmt.Sprintf("%s -> %s", from, to), nil)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", causeText(err), err)
}

// ==========================
// 3. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) Category {
	if c, ok := codeCategories[code]; ok {
		return c
	}
	return CategoryInternal
}

// IsRetryableErrorCode reports whether a failed call may be attempted again.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeUpstreamUnavailable, ErrCodeUpstreamTimeout:
		return true
	default:
		return false
	}
}

// As returns the StandardError in err's chain, if any.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch Normalize(err).Category() {
	case CategoryConfig:
		return 2
	case CategoryInput:
		return 3
	case CategoryResource:
		return 4
	case CategoryUpstream:
		return 5
	default:
		return 1
	}
}
