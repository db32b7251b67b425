package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/beatrove/catalog/internal/common"
)

// GeminiProvider completes prompts through the Gemini API.
type GeminiProvider struct {
	cfg    common.LLMConfig
	logger *slog.Logger
}

func NewGeminiProvider(cfg common.LLMConfig, logger *slog.Logger) *GeminiProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiProvider{cfg: cfg, logger: logger}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Available() bool {
	return p.cfg.GeminiAPIKey != "" && p.cfg.GeminiModel != ""
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.cfg.GeminiAPIKey))
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			p.logger.Warn("llm.gemini.client_close_error", "error", cerr)
		}
	}()

	model := client.GenerativeModel(p.cfg.GeminiModel)
	model.SetTemperature(p.cfg.Temperature)
	model.SetTopP(p.cfg.TopP)
	if p.cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(p.cfg.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty gemini response")
	}

	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			texts = append(texts, string(txt))
		}
	}
	out := strings.TrimSpace(strings.Join(texts, "\n"))
	if out == "" {
		return "", fmt.Errorf("no text parts in gemini response")
	}
	return out, nil
}
