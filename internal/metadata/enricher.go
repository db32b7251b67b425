package metadata

import (
	"context"
	"log/slog"

	"github.com/beatrove/catalog/internal/llm"
	"github.com/beatrove/catalog/internal/ocr"
)

// Enricher runs an ordered chain of strategies against one mutable draft.
// Ordering matters: the completion strategy runs first so heuristics only
// fill what the model left empty.
type Enricher struct {
	strategies []Strategy
}

// NewEnricher builds the default chain: remote completion, then heuristics.
func NewEnricher(provider llm.Provider, maxRetries int, logger *slog.Logger) *Enricher {
	return NewEnricherWith(
		NewCompletionStrategy(provider, maxRetries, logger),
		HeuristicStrategy{},
	)
}

// NewEnricherWith builds a chain over explicit strategies, mostly for tests
// and callers that want a heuristic-only pipeline.
func NewEnricherWith(strategies ...Strategy) *Enricher {
	return &Enricher{strategies: strategies}
}

// Enrich applies every strategy in order and returns the same draft.
func (e *Enricher) Enrich(ctx context.Context, draft *Draft, payloads []ocr.Text) *Draft {
	for _, strategy := range e.strategies {
		strategy.Apply(ctx, draft, payloads)
	}
	return draft
}
