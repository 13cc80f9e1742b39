// internal/common/errors/handler.go
package errors

import (
	"fmt"
	"io"
)

// ErrorHandler reports terminal run failures with standardized error handling.
type ErrorHandler struct {
	logger Logger
	out    io.Writer
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger, out io.Writer) *ErrorHandler {
	return &ErrorHandler{logger: logger, out: out}
}

// Handle logs err, prints a diagnostic line identifying its category and
// returns the exit code the process should terminate with.
func (h *ErrorHandler) Handle(err error) int {
	if err == nil {
		return 0
	}
	stdErr := Normalize(err)
	code := ExitCode(stdErr)
	h.logError(stdErr, code)

	fmt.Fprintf(h.out, "error [%s/%s]: %s\n", stdErr.Category(), stdErr.Code, stdErr.Message)
	if stdErr.Details != "" {
		fmt.Fprintf(h.out, "  %s\n", stdErr.Details)
	}
	return code
}

func (h *ErrorHandler) logError(stdErr *StandardError, exitCode int) {
	if h.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"errorCategory": string(stdErr.Category()),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"exitCode":      exitCode,
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}
	h.logger.Error("exiting with error", fields)
}
