package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beatrove/catalog/internal/common"
)

// DefaultPrompt asks multimodal backends for a complete verbatim
// transcription; structured extraction is downstream enrichment's job.
const DefaultPrompt = "You are an expert archivist for vinyl records. Carefully transcribe every word from the sleeve images, including multi-page track lists, liner notes, catalog numbers, and multi-language text. " +
	"Return the COMPLETE transcription as plain text only—no JSON, no summaries, no paraphrasing, no commentary. " +
	"If multiple languages appear, include them verbatim and note the language inline. " +
	"Preserve capitalization, diacritics, punctuation, and layout cues when possible (e.g., track numbers, sides, catalog codes). " +
	"Do not omit any names, movements, or credits, even if they repeat. " +
	"The transcription will be processed by another system to extract structured metadata."

// HTTPProvider talks to an OpenAI-style chat/completions endpoint with
// vision support (image sent as a base64 data URL).
type HTTPProvider struct {
	cfg      common.OCRConfig
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func NewHTTPProvider(cfg common.OCRConfig, logger *slog.Logger) *HTTPProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPProvider{
		cfg:      cfg,
		endpoint: normalizeEndpoint(cfg.HTTPEndpoint),
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (p *HTTPProvider) Name() string { return "http" }

func (p *HTTPProvider) Available() bool { return p.endpoint != "" }

func (p *HTTPProvider) Extract(ctx context.Context, imagePath string) (any, error) {
	encoded, mimeType, err := encodeImage(imagePath)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	body := map[string]any{
		"model":       p.cfg.Model,
		"temperature": p.cfg.Temperature,
		"max_tokens":  p.cfg.MaxTokens,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "image_url",
						"image_url": map[string]any{
							"url": "data:" + mimeType + ";base64," + encoded,
						},
					},
					{
						"type": "text",
						"text": p.cfg.Prompt,
					},
				},
			},
		},
	}

	raw, err := postJSON(ctx, p.client, p.endpoint, body, nil)
	if err != nil {
		p.logger.Warn("ocr.http.request_failed", "error", err)
		return nil, err
	}
	return extractCompletionPayload(raw), nil
}

// normalizeEndpoint fills in the chat/completions path when the configured
// URL only names a host.
func normalizeEndpoint(endpoint string) string {
	if endpoint == "" {
		return endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/v1/chat/completions"
	}
	return u.String()
}

func encodeImage(imagePath string) (encoded, mimeType string, err error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", "", err
	}
	mimeType = mime.TypeByExtension(filepath.Ext(imagePath))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return base64.StdEncoding.EncodeToString(data), mimeType, nil
}

// postJSON posts a JSON body and returns the raw response bytes; non-2xx
// statuses are errors so the chain can skip to the next backend.
func postJSON(ctx context.Context, client *http.Client, endpoint string, body any, query url.Values) ([]byte, error) {
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	if len(query) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("ocr.http.body_close_error", "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("non-2xx status %d: %s", resp.StatusCode, truncate(string(raw), 512))
	}
	return raw, nil
}

// extractCompletionPayload pulls the assistant text out of an OpenAI-style
// response body. Unexpected shapes fall through to the decoded structure so
// normalization can still flatten them into raw text.
func extractCompletionPayload(raw []byte) any {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return strings.TrimSpace(string(raw))
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return data
	}

	if choices, ok := obj["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				switch content := message["content"].(type) {
				case string:
					return strings.TrimSpace(content)
				case []any:
					for _, part := range content {
						if pm, ok := part.(map[string]any); ok && pm["type"] == "text" {
							if text, ok := pm["text"].(string); ok {
								return strings.TrimSpace(text)
							}
						}
					}
				}
			}
			if text, ok := choice["text"].(string); ok {
				return strings.TrimSpace(text)
			}
		}
	}
	if message, ok := obj["message"].(map[string]any); ok {
		if text, ok := message["content"].(string); ok {
			return strings.TrimSpace(text)
		}
	}
	if text, ok := obj["text"].(string); ok {
		return strings.TrimSpace(text)
	}
	return data
}
