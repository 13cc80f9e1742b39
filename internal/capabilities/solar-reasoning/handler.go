// internal/capabilities/solar-reasoning/handler.go
package solarreasoning

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"

	apperrors "policy-navigator/internal/common/errors"
	apphttp "policy-navigator/internal/common/http"
	"policy-navigator/internal/common/metrics"
)

const (
	CapabilityName = "solar"

	DefaultModel       = "solar-pro2"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 16384
)

var ErrEmptyPrompt = errors.New("EMPTY_PROMPT")

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	client openai.Client
	logger Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	return &Handler{
		config: config,
		client: apphttp.NewOpenAIClient(config.BaseURL, config.APIKey, config.Timeout),
		logger: log.With(map[string]interface{}{
			"capability": CapabilityName,
			"model":      config.Model,
		}),
	}
}

// Infer sends prompt as a single user message and returns the reply text.
func (h *Handler) Infer(ctx context.Context, stage, prompt string) (string, error) {
	out, err := h.Execute(ctx, &Input{Stage: stage, Prompt: prompt})
	if err != nil {
		return "", err
	}
	return out.Content, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	started := time.Now()
	output, err := h.execute(ctx, input)
	metrics.ObserveCall(CapabilityName+"/"+input.Stage, started, err)
	return output, err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Prompt == "" {
		return nil, apperrors.NewInternalError(ErrEmptyPrompt)
	}

	params := openai.ChatCompletionNewParams{
		Model: h.config.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(input.Prompt),
		},
		Temperature: openai.Float(h.config.Temperature),
		MaxTokens:   openai.Int(int64(h.config.MaxTokens)),
	}
	if h.config.ReasoningEffort != "" {
		params.ReasoningEffort = shared.ReasoningEffort(h.config.ReasoningEffort)
	}

	h.logger.Info("calling reasoning model", map[string]interface{}{
		"stage":       input.Stage,
		"promptRunes": len([]rune(input.Prompt)),
	})

	var completion *openai.ChatCompletion
	err := apphttp.Retry(ctx, CapabilityName, h.config.MaxRetries, func(attempt int) error {
		if attempt > 0 {
			h.logger.Warn("retrying reasoning call", map[string]interface{}{
				"stage":   input.Stage,
				"attempt": attempt,
			})
		}
		resp, callErr := h.client.Chat.Completions.New(ctx, params)
		if callErr != nil {
			return apphttp.ClassifySDKError(ctx, CapabilityName, callErr)
		}
		completion = resp
		return nil
	})
	if err != nil {
		h.logger.Error("reasoning call failed", map[string]interface{}{
			"stage": input.Stage,
			"error": err.Error(),
		})
		return nil, err
	}

	if len(completion.Choices) == 0 {
		return nil, apperrors.NewResponseMalformedError(input.Stage, "completion has no choices")
	}
	choice := completion.Choices[0]
	if choice.Message.Content == "" {
		h.logger.Warn("reasoning model returned empty content", map[string]interface{}{
			"stage":        input.Stage,
			"finishReason": choice.FinishReason,
		})
	}

	h.logger.Info("reasoning call completed", map[string]interface{}{
		"stage":        input.Stage,
		"finishReason": choice.FinishReason,
		"totalTokens":  completion.Usage.TotalTokens,
	})

	return &Output{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Model:        completion.Model,
		TotalTokens:  completion.Usage.TotalTokens,
	}, nil
}
