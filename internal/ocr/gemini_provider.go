package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/beatrove/catalog/internal/common"
)

// GeminiProvider transcribes sleeve images through the Gemini multimodal
// API using the official SDK.
type GeminiProvider struct {
	cfg    common.OCRConfig
	logger *slog.Logger
}

func NewGeminiProvider(cfg common.OCRConfig, logger *slog.Logger) *GeminiProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	return &GeminiProvider{cfg: cfg, logger: logger}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Available() bool {
	return p.cfg.GeminiAPIKey != "" && p.cfg.GeminiModel != ""
}

func (p *GeminiProvider) Extract(ctx context.Context, imagePath string) (any, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			p.logger.Warn("ocr.gemini.client_close_error", "error", cerr)
		}
	}()

	model := client.GenerativeModel(p.cfg.GeminiModel)
	model.SetTemperature(p.cfg.Temperature)
	if p.cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(p.cfg.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx,
		genai.Text(p.cfg.Prompt),
		genai.Blob{MIMEType: imageMIME(imagePath), Data: data},
	)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := collectGeminiText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}
	return text, nil
}

func collectGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}
	var texts []string
	for _, part := range content.Parts {
		if txt, ok := part.(genai.Text); ok {
			texts = append(texts, string(txt))
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

func imageMIME(imagePath string) string {
	if mt := mime.TypeByExtension(filepath.Ext(imagePath)); mt != "" {
		return mt
	}
	return "image/jpeg"
}
