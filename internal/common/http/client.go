// internal/common/http/client.go
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "policy-navigator/internal/common/errors"
)

const maxErrorBody = 200

// Client is a bearer-authenticated HTTP client for the Upstage API.
type Client struct {
	httpClient *http.Client
	apiKey     string
}

func NewClient(timeout time.Duration, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey: apiKey,
	}
}

// HTTPClient exposes the underlying client so SDK-based callers can share
// its timeout settings.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Do sends req with the Authorization header set. Transport failures are
// returned as classified StandardErrors; non-2xx responses are returned to
// the caller untouched.
func (c *Client) Do(ctx context.Context, service string, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyTransportError(ctx, service, err)
	}
	return resp, nil
}

// ClassifyTransportError maps a failed round trip to a timeout or unavailable error.
func ClassifyTransportError(ctx context.Context, service string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewUpstreamTimeoutError(service, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewUpstreamTimeoutError(service, err)
	}
	return apperrors.NewUpstreamUnavailableError(service, err)
}

// ClassifyStatus converts a non-2xx status and its body excerpt into the
// upstream error taxonomy.
func ClassifyStatus(service string, status int, body string) error {
	excerpt := strings.TrimSpace(body)
	if runes := []rune(excerpt); len(runes) > maxErrorBody {
		excerpt = string(runes[:maxErrorBody])
	}
	details := fmt.Sprintf("status %d", status)
	if excerpt != "" {
		details = fmt.Sprintf("status %d: %s", status, excerpt)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.NewAuthFailureError(service, details)
	case status == http.StatusPaymentRequired || status == http.StatusTooManyRequests:
		return apperrors.NewQuotaFailureError(service, details)
	case status == http.StatusRequestEntityTooLarge || (status == http.StatusBadRequest && mentionsContextLength(body)):
		return apperrors.NewContextLengthExceededError(service, details)
	case status >= 500:
		return apperrors.NewUpstreamUnavailableError(service, errors.New(details))
	default:
		return apperrors.NewUpstreamRejectedError(service, status, details)
	}
}

// ReadErrorResponse drains resp and classifies it.
func ReadErrorResponse(service string, resp *http.Response) error {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return ClassifyStatus(service, resp.StatusCode, string(body))
}

func mentionsContextLength(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range []string{"context length", "context_length", "maximum context", "too many tokens", "token limit", "max_tokens"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
