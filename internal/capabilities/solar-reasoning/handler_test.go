// internal/capabilities/solar-reasoning/handler_test.go
package solarreasoning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "policy-navigator/internal/common/errors"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t, fields: make(map[string]interface{})}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return &TestLogger{t: l.t, fields: l.mergeFields(fields)}
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	all := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}
	return all
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig(baseURL string) *Config {
	return &Config{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Model:       "solar-pro2",
		Temperature: 0.2,
		MaxTokens:   16384,
		Timeout:     5 * time.Second,
	}
}

func completionResponse(content string) string {
	resp := map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "solar-pro2",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
			},
		},
		"usage": map[string]interface{}{
			"prompt_tokens":     10,
			"completion_tokens": 5,
			"total_tokens":      15,
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse(`{"questions":[]}`)))
	}))
	defer server.Close()

	cfg := createTestConfig(server.URL + "/v1")
	cfg.ReasoningEffort = "high"
	out, err := NewHandler(cfg, NewTestLogger(t)).Execute(context.Background(), &Input{Stage: "plan", Prompt: "분석해 주세요"})
	require.NoError(t, err)

	assert.Equal(t, `{"questions":[]}`, out.Content)
	assert.Equal(t, "stop", out.FinishReason)
	assert.Equal(t, int64(15), out.TotalTokens)

	assert.Equal(t, "solar-pro2", body["model"])
	assert.Equal(t, 0.2, body["temperature"])
	assert.Equal(t, float64(16384), body["max_tokens"])
	assert.Equal(t, "high", body["reasoning_effort"])
	messages, ok := body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]interface{})
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "분석해 주세요", msg["content"])
}

func TestHandler_Infer_OmitsReasoningEffortByDefault(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("[자격 판단]\n- 자격 충족")))
	}))
	defer server.Close()

	content, err := NewHandler(createTestConfig(server.URL), NewTestLogger(t)).Infer(context.Background(), "final", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "[자격 판단]\n- 자격 충족", content)
	_, present := body["reasoning_effort"]
	assert.False(t, present)
}

func TestNewHandler_Defaults(t *testing.T) {
	cfg := &Config{BaseURL: "http://localhost"}
	NewHandler(cfg, NewTestLogger(t))
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
	}{
		{"auth failure", http.StatusUnauthorized, `{"error":{"message":"invalid api key"}}`, apperrors.ErrCodeAuthFailure},
		{"forbidden", http.StatusForbidden, `{"error":{"message":"forbidden"}}`, apperrors.ErrCodeAuthFailure},
		{"quota", http.StatusTooManyRequests, `{"error":{"message":"quota exceeded"}}`, apperrors.ErrCodeQuotaFailure},
		{"context length", http.StatusBadRequest, `{"error":{"message":"prompt exceeds the maximum context length"}}`, apperrors.ErrCodeContextLengthExceeded},
		{"rejected", http.StatusBadRequest, `{"error":{"message":"invalid model"}}`, apperrors.ErrCodeUpstreamRejected},
		{"unavailable", http.StatusBadGateway, `{"error":{"message":"bad gateway"}}`, apperrors.ErrCodeUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewHandler(createTestConfig(server.URL), NewTestLogger(t)).Execute(context.Background(), &Input{Stage: "plan", Prompt: "p"})
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), err)
			assert.Equal(t, 5, apperrors.ExitCode(err))
		})
	}
}

func TestHandler_Execute_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"solar-pro2","choices":[]}`))
	}))
	defer server.Close()

	_, err := NewHandler(createTestConfig(server.URL), NewTestLogger(t)).Execute(context.Background(), &Input{Stage: "plan", Prompt: "p"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeResponseMalformed), err)
}

func TestHandler_Execute_RetryPolicy(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		wantCalls  int32
		wantErr    bool
	}{
		{"no retries by default", 0, 1, true},
		{"one retry recovers", 1, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				if atomic.AddInt32(&calls, 1) == 1 {
					w.WriteHeader(http.StatusServiceUnavailable)
					w.Write([]byte(`{"error":{"message":"overloaded"}}`))
					return
				}
				w.Write([]byte(completionResponse("ok")))
			}))
			defer server.Close()

			cfg := createTestConfig(server.URL)
			cfg.MaxRetries = tt.maxRetries
			_, err := NewHandler(cfg, NewTestLogger(t)).Execute(context.Background(), &Input{Stage: "plan", Prompt: "p"})
			assert.Equal(t, tt.wantErr, err != nil, err)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestHandler_Execute_EmptyPrompt(t *testing.T) {
	_, err := NewHandler(createTestConfig("http://localhost"), NewTestLogger(t)).Execute(context.Background(), &Input{Stage: "plan"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestHandler_Execute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(completionResponse("late")))
	}))
	defer server.Close()

	cfg := createTestConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	_, err := NewHandler(cfg, NewTestLogger(t)).Execute(context.Background(), &Input{Stage: "plan", Prompt: "p"})
	require.Error(t, err)
	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, []apperrors.ErrorCode{apperrors.ErrCodeUpstreamTimeout, apperrors.ErrCodeUpstreamUnavailable}, stdErr.Code)
}
