// internal/common/http/retry.go
package http

import (
	"context"
	"time"

	apperrors "policy-navigator/internal/common/errors"
)

// Backoff returns the wait before the given retry attempt (1-based).
func Backoff(attempt int) time.Duration {
	return time.Duration(100*(1<<(attempt-1))) * time.Millisecond
}

// Retry runs fn up to maxRetries+1 times. Only errors classified as
// retryable are retried; anything else is returned immediately.
func Retry(ctx context.Context, service string, maxRetries int, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(Backoff(attempt)):
			case <-ctx.Done():
				return apperrors.NewUpstreamTimeoutError(service, ctx.Err())
			}
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		stdErr, ok := apperrors.As(lastErr)
		if !ok || !stdErr.Retryable {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}
