package llm

import (
	"context"
	"log/slog"

	"github.com/beatrove/catalog/internal/common"
)

// Provider is the completion capability enrichment depends on: one prompt
// in, raw text out. The text may contain markdown fences or stray prose
// around a JSON object; recovery is the caller's business.
type Provider interface {
	Name() string
	Available() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider selects the configured backend.
func NewProvider(cfg common.LLMConfig, logger *slog.Logger) Provider {
	if cfg.Provider == "gemini" {
		return NewGeminiProvider(cfg, logger)
	}
	return NewHTTPProvider(cfg, logger)
}
