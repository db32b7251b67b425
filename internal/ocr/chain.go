package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	retry "github.com/avast/retry-go/v4"

	"github.com/beatrove/catalog/internal/common"
)

// Chain tries extraction backends in priority order and returns the first
// non-empty normalized payload. OCR failure is never fatal: if every
// backend is unavailable, errors out, or produces nothing, the result is an
// all-empty Text and the caller proceeds without an OCR contribution.
type Chain struct {
	providers []Provider
	retries   int
	logger    *slog.Logger
}

// NewChain builds the default chain: network multimodal backends first,
// local command-line fallback last.
func NewChain(cfg common.OCRConfig, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	providers := []Provider{
		NewHTTPProvider(cfg, logger),
		NewGeminiProvider(cfg, logger),
		NewCommandProvider(cfg, logger),
	}
	return NewChainWith(providers, cfg.MaxRetries, logger)
}

// NewChainWith builds a chain over an explicit provider list; new backends
// register here without touching the chain's control flow.
func NewChainWith(providers []Provider, retries int, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	if retries <= 0 {
		retries = 1
	}
	return &Chain{providers: providers, retries: retries, logger: logger}
}

// Attempt runs the chain against one image, short-circuiting on the first
// backend that yields content.
func (c *Chain) Attempt(ctx context.Context, imagePath string) Text {
	for _, provider := range c.providers {
		if !provider.Available() {
			continue
		}

		start := time.Now()
		text, err := c.attemptProvider(ctx, provider, imagePath)
		if err != nil {
			c.logger.Warn("ocr.extract.failed",
				"provider", provider.Name(),
				"error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			continue
		}

		c.logger.Info("ocr.extract.ok",
			"provider", provider.Name(),
			"raw_bytes", len(text.Raw()),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return text
	}
	return NewText()
}

func (c *Chain) attemptProvider(ctx context.Context, provider Provider, imagePath string) (Text, error) {
	return retry.DoWithData(
		func() (Text, error) {
			payload, err := provider.Extract(ctx, imagePath)
			if err != nil {
				return nil, err
			}
			text := Normalize(payload)
			if text.Empty() {
				return nil, fmt.Errorf("empty payload")
			}
			return text, nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.retries)),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}
