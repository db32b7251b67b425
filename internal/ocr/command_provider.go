package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/beatrove/catalog/internal/common"
)

// CommandProvider shells out to a local OCR tool. The configured template
// has {image} substituted with the file path, e.g.
// "tesseract {image} stdout -l deu+eng".
type CommandProvider struct {
	template string
	runner   Runner
	logger   *slog.Logger
}

func NewCommandProvider(cfg common.OCRConfig, logger *slog.Logger) *CommandProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandProvider{template: cfg.Command, runner: execRunner{}, logger: logger}
}

func (p *CommandProvider) Name() string { return "command" }

func (p *CommandProvider) Available() bool { return p.template != "" }

func (p *CommandProvider) Extract(ctx context.Context, imagePath string) (any, error) {
	formatted := strings.ReplaceAll(p.template, "{image}", imagePath)
	parts := strings.Fields(formatted)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty ocr command")
	}

	stdout, stderr, err := p.runner.Run(ctx, parts[0], parts[1:]...)
	if err != nil {
		return nil, fmt.Errorf("run ocr command: %w", err)
	}

	payload := strings.TrimSpace(string(stdout))
	if payload == "" {
		payload = strings.TrimSpace(string(stderr))
	}
	if payload == "" {
		return nil, fmt.Errorf("empty ocr command output")
	}
	return payload, nil
}
