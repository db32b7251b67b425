package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beatrove/catalog/internal/common"
)

// HTTPProvider posts prompts to a generic completions endpoint (llama.cpp,
// vLLM, or anything speaking the OpenAI completions dialect) and tolerates
// both completion-style and chat-style response bodies.
type HTTPProvider struct {
	cfg    common.LLMConfig
	client *http.Client
	logger *slog.Logger
}

func NewHTTPProvider(cfg common.LLMConfig, logger *slog.Logger) *HTTPProvider {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (p *HTTPProvider) Name() string { return "http" }

func (p *HTTPProvider) Available() bool { return p.cfg.Endpoint != "" }

func (p *HTTPProvider) Complete(ctx context.Context, prompt string) (string, error) {
	reqID := uuid.New().String()
	start := time.Now()

	body := map[string]any{
		"model":       p.cfg.Model,
		"prompt":      prompt,
		"temperature": p.cfg.Temperature,
		"top_p":       p.cfg.TopP,
		"max_tokens":  p.cfg.MaxTokens,
		"stream":      false,
	}

	bs, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(bs))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	p.logger.Info("llm.http.request", "req_id", reqID, "content_length", len(bs))

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Error("llm.http.send_error", "req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.logger.Warn("llm.http.body_close_error", "req_id", reqID, "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)

	p.logger.Info("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return extractCompletionText(raw), nil
}

// extractCompletionText pulls the generated text out of either a
// completion-style body ({"choices":[{"text":...}]}) or a chat-style body
// ({"choices":[{"message":{"content":...}}]}). Bodies that decode to
// nothing recognizable fall back to the raw text.
func extractCompletionText(raw []byte) string {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return strings.TrimSpace(string(raw))
	}

	if choices, ok := data["choices"].([]any); ok && len(choices) > 0 {
		choice, _ := choices[0].(map[string]any)
		if text, ok := choice["text"].(string); ok {
			return strings.TrimSpace(text)
		}
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
	}
	if text, ok := data["text"].(string); ok {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(string(raw))
}
