package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "policy-navigator/internal/common/errors"
)

func TestOpenAIClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
	}{
		{"auth", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`, apperrors.ErrCodeAuthFailure},
		{"quota", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"rate_limit"}}`, apperrors.ErrCodeQuotaFailure},
		{"context", http.StatusBadRequest, `{"error":{"message":"This model's maximum context length is 65536 tokens","type":"invalid_request_error"}}`, apperrors.ErrCodeContextLengthExceeded},
		{"server", http.StatusServiceUnavailable, `{"error":{"message":"overloaded"}}`, apperrors.ErrCodeUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewOpenAIClient(server.URL+"/v1", "key", 5*time.Second)
			_, err := client.Chat.Completions.New(context.Background(), openai.ChatCompletionNewParams{
				Model:    "solar-pro2",
				Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage("hi")},
			})
			require.Error(t, err)

			classified := ClassifySDKError(context.Background(), "solar", err)
			assert.True(t, apperrors.HasCode(classified, tt.wantCode), classified)
		})
	}
}

func TestClassifySDKError_Transport(t *testing.T) {
	client := NewOpenAIClient("http://127.0.0.1:1/v1", "key", time.Second)
	_, err := client.Chat.Completions.New(context.Background(), openai.ChatCompletionNewParams{
		Model:    "solar-pro2",
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage("hi")},
	})
	require.Error(t, err)

	classified := ClassifySDKError(context.Background(), "solar", err)
	assert.True(t, apperrors.HasCode(classified, apperrors.ErrCodeUpstreamUnavailable) ||
		apperrors.HasCode(classified, apperrors.ErrCodeUpstreamTimeout), classified)
}
