// internal/capabilities/information-extract/handler.go
package informationextract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"

	apperrors "policy-navigator/internal/common/errors"
	apphttp "policy-navigator/internal/common/http"
	"policy-navigator/internal/common/metrics"
	"policy-navigator/internal/common/validation"
	"policy-navigator/internal/models"
)

const (
	CapabilityName = "information-extract"
	endpointPath   = "/information-extraction"
	schemaName     = "policy_schema"

	DefaultModel = "information-extract"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config    *Config
	client    openai.Client
	validator *validation.Validator
	logger    Logger
}

func NewHandler(config *Config, log Logger) (*Handler, error) {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Schema == nil {
		return nil, apperrors.NewInvalidConfigError("information extraction needs a response schema", nil)
	}
	validator, err := validation.NewValidator(schemaName, config.Schema)
	if err != nil {
		return nil, apperrors.NewInvalidConfigError("information extraction schema does not compile", err)
	}
	base := strings.TrimRight(config.BaseURL, "/") + endpointPath
	return &Handler{
		config:    config,
		client:    apphttp.NewOpenAIClient(base, config.APIKey, config.Timeout),
		validator: validator,
		logger: log.With(map[string]interface{}{
			"capability": CapabilityName,
		}),
	}, nil
}

// Extract returns the slot mapping for the document at path.
func (h *Handler) Extract(ctx context.Context, path string) (models.SlotMapping, error) {
	out, err := h.Execute(ctx, &Input{Path: path})
	if err != nil {
		return nil, err
	}
	return models.SlotMapping(out.Slots), nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	started := time.Now()
	output, err := h.execute(ctx, input)
	metrics.ObserveCall(CapabilityName, started, err)
	return output, err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	dataURL, err := encodeDocument(input.Path)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model: h.config.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName,
					Schema: h.config.Schema,
				},
			},
		},
	}

	var completion *openai.ChatCompletion
	err = apphttp.Retry(ctx, CapabilityName, h.config.MaxRetries, func(attempt int) error {
		resp, callErr := h.client.Chat.Completions.New(ctx, params)
		if callErr != nil {
			return apphttp.ClassifySDKError(ctx, CapabilityName, callErr)
		}
		completion = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, apperrors.NewResponseMalformedError("extract", "completion has no choices")
	}

	slots := map[string]interface{}{}
	content := completion.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &slots); err != nil || slots == nil {
		h.logger.Warn("extraction content is not a JSON object; using empty mapping", map[string]interface{}{
			"contentRunes": len([]rune(content)),
		})
		return &Output{Slots: map[string]interface{}{}}, nil
	}

	out := &Output{Slots: slots}
	if res, err := h.validator.ValidateValue(slots); err == nil && !res.Valid {
		out.SchemaErrors = res.GetErrorMessages()
		h.logger.Warn("extraction does not match schema", map[string]interface{}{
			"errors": out.SchemaErrors,
		})
	}

	h.logger.Info("slots extracted", map[string]interface{}{
		"slotCount": len(slots),
	})
	return out, nil
}

// encodeDocument reads path into a base64 data URL. PDFs are sent as
// application/pdf, everything else as image/png.
func encodeDocument(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperrors.NewMissingFileError(path)
		}
		return "", apperrors.NewUnreadableFileError(path, err)
	}
	mime := "image/png"
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		mime = "application/pdf"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
