// internal/capabilities/document-parse/handler.go
package documentparse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "policy-navigator/internal/common/errors"
	apphttp "policy-navigator/internal/common/http"
	"policy-navigator/internal/common/metrics"
	"policy-navigator/internal/models"
)

const (
	CapabilityName = "document-parse"
	endpointPath   = "/document-digitization"

	DefaultModel             = "document-parse-nightly"
	DefaultFallbackTextLimit = 20000
)

var ErrEmptyDocument = errors.New("EMPTY_DOCUMENT")

var (
	textKeys   = []string{"html", "text", "content"}
	nestedKeys = []string{"html", "text"}
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	client *apphttp.Client
	logger Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.FallbackTextLimit <= 0 {
		config.FallbackTextLimit = DefaultFallbackTextLimit
	}
	return &Handler{
		config: config,
		client: apphttp.NewClient(config.Timeout, config.APIKey),
		logger: log.With(map[string]interface{}{
			"capability": CapabilityName,
		}),
	}
}

// Parse uploads the document at path and returns it as a PolicyDocument.
func (h *Handler) Parse(ctx context.Context, path string) (*models.PolicyDocument, error) {
	out, err := h.Execute(ctx, &Input{Path: path})
	if err != nil {
		return nil, err
	}
	return &models.PolicyDocument{
		SourcePath: path,
		Text:       out.Text,
		Raw:        out.Raw,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	started := time.Now()
	output, err := h.execute(ctx, input)
	metrics.ObserveCall(CapabilityName, started, err)
	return output, err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	content, err := readDocument(input.Path)
	if err != nil {
		return nil, err
	}

	body, contentType, err := h.buildMultipart(filepath.Base(input.Path), content)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("build upload: %w", err))
	}

	h.logger.Info("uploading document", map[string]interface{}{
		"path":  input.Path,
		"bytes": len(content),
		"model": h.config.Model,
	})

	var raw map[string]interface{}
	err = apphttp.Retry(ctx, CapabilityName, h.config.MaxRetries, func(attempt int) error {
		if attempt > 0 {
			h.logger.Warn("retrying document parse", map[string]interface{}{"attempt": attempt})
		}
		var callErr error
		raw, callErr = h.post(ctx, body, contentType)
		return callErr
	})
	if err != nil {
		h.logger.Error("document parse failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	text, source := ExtractText(raw, h.config.FallbackTextLimit)
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewParseFailureError("document parse returned no text", ErrEmptyDocument)
	}

	h.logger.Info("document parsed", map[string]interface{}{
		"textSource": source,
		"textRunes":  len([]rune(text)),
	})

	return &Output{Text: text, Raw: raw, TextSource: source}, nil
}

func (h *Handler) post(ctx context.Context, body []byte, contentType string) (map[string]interface{}, error) {
	url := strings.TrimRight(h.config.BaseURL, "/") + endpointPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := h.client.Do(ctx, CapabilityName, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apphttp.ReadErrorResponse(CapabilityName, resp)
	}
	defer resp.Body.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, apperrors.NewParseFailureError("document parse response is not a JSON object", err)
	}
	return raw, nil
}

func (h *Handler) buildMultipart(filename string, content []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("document", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"model", h.config.Model},
		{"mode", "auto"},
		{"ocr", "auto"},
		{"chart_recognition", "true"},
		{"coordinates", "true"},
		{"output_formats", `["html"]`},
		{"base64_encoding", `["figure"]`},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// readDocument maps filesystem failures onto the resource error codes.
func readDocument(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewMissingFileError(path)
		}
		return nil, apperrors.NewUnreadableFileError(path, err)
	}
	if info.IsDir() {
		return nil, apperrors.NewUnreadableFileError(path, errors.New("is a directory"))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewUnreadableFileError(path, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewUnreadableFileError(path, err)
	}
	return content, nil
}

// ExtractText recovers the document text from a parse response. It looks
// for html, text and content keys, either as strings or as objects holding
// html or text, and otherwise falls back to the payload itself cut to limit
// runes.
func ExtractText(raw map[string]interface{}, limit int) (string, string) {
	for _, key := range textKeys {
		switch val := raw[key].(type) {
		case string:
			if strings.TrimSpace(val) != "" {
				return val, key
			}
		case map[string]interface{}:
			for _, nested := range nestedKeys {
				if s, ok := val[nested].(string); ok && strings.TrimSpace(s) != "" {
					return s, key + "." + nested
				}
			}
		}
	}

	if len(raw) == 0 {
		return "", "fallback"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(raw); err != nil {
		return "", "fallback"
	}
	text := strings.TrimRight(buf.String(), "\n")
	if limit > 0 {
		if runes := []rune(text); len(runes) > limit {
			text = string(runes[:limit])
		}
	}
	return text, "fallback"
}
