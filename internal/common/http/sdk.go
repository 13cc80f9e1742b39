// internal/common/http/sdk.go
package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// NewOpenAIClient builds an SDK client for an OpenAI-compatible Upstage
// endpoint. SDK-level retries are disabled; callers retry through Retry.
func NewOpenAIClient(baseURL, apiKey string, timeout time.Duration) openai.Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithHTTPClient(NewClient(timeout, "").HTTPClient()),
	)
}

// ClassifySDKError maps an openai-go error onto the upstream taxonomy.
func ClassifySDKError(ctx context.Context, service string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return ClassifyStatus(service, apiErr.StatusCode, apiErr.Error())
	}
	return ClassifyTransportError(ctx, service, err)
}
