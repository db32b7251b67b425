package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"

	"github.com/beatrove/catalog/constants"
	"github.com/beatrove/catalog/internal/llm"
	"github.com/beatrove/catalog/internal/ocr"
)

// Strategy is one stage of the enrichment chain. Each strategy mutates the
// shared draft according to its own fill policy; failures inside a strategy
// degrade to "no contribution" and never abort the chain.
type Strategy interface {
	Apply(ctx context.Context, draft *Draft, payloads []ocr.Text)
}

// completionFillFields are written only when the draft value is still
// empty: manual and OCR evidence always beat the model for these.
var completionFillFields = []string{
	constants.FieldArtist,
	constants.FieldComposer,
	constants.FieldCatalogNumber,
	constants.FieldLabel,
	constants.FieldYear,
	constants.FieldLocation,
	constants.FieldGenre,
	constants.FieldKeySignature,
	constants.FieldComposerCode,
}

// CompletionStrategy asks a remote completion provider to derive structured
// metadata from the manual hints and OCR transcripts.
//
// Fill policy: every field except record_name is fill-if-empty. A non-empty
// record_name from the model always overwrites the draft, even over manual
// input, because the model reliably produces a cleaner title than sleeve
// transcription noise. That asymmetry is deliberate.
type CompletionStrategy struct {
	provider   llm.Provider
	maxRetries int
	logger     *slog.Logger
}

func NewCompletionStrategy(provider llm.Provider, maxRetries int, logger *slog.Logger) *CompletionStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &CompletionStrategy{provider: provider, maxRetries: maxRetries, logger: logger}
}

func (s *CompletionStrategy) Apply(ctx context.Context, draft *Draft, payloads []ocr.Text) {
	if s.provider == nil || !s.provider.Available() {
		return
	}

	result, ok := s.run(ctx, draft.Fields, payloads)
	if !ok {
		s.logger.Info("llm.enrich.no_result", "provider", s.provider.Name())
		return
	}

	for _, field := range completionFillFields {
		candidate := stringValue(result[field])
		if candidate != "" && draft.Fields.Get(field) == "" {
			draft.Fields.Set(field, candidate)
		}
	}
	if candidate := stringValue(result[constants.FieldRecordName]); candidate != "" {
		draft.Fields.Set(constants.FieldRecordName, candidate)
	}
	if candidate := stringValue(result[constants.FieldNotes]); candidate != "" && draft.Fields.Get(constants.FieldNotes) == "" {
		draft.Fields.Set(constants.FieldNotes, candidate)
	}

	if records, ok := result["records"].([]any); ok && len(records) > 0 {
		draft.Records = recordsFromResult(records)
	}

	s.logger.Info("llm.enrich.ok",
		"provider", s.provider.Name(),
		"records", len(draft.Records),
	)
}

func (s *CompletionStrategy) run(ctx context.Context, fields Fields, payloads []ocr.Text) (map[string]any, bool) {
	prompt := buildEnrichmentPrompt(fields, payloads)

	result, err := retry.DoWithData(
		func() (map[string]any, error) {
			text, err := s.provider.Complete(ctx, prompt)
			if err != nil {
				return nil, err
			}
			obj, ok := llm.ParseObject(text)
			if !ok {
				return nil, fmt.Errorf("no json object in response")
			}
			if err := llm.ValidateEnrichment(obj); err != nil {
				return nil, fmt.Errorf("enrichment shape: %w", err)
			}
			return obj, nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(s.maxRetries)),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		s.logger.Warn("llm.enrich.failed", "provider", s.provider.Name(), "error", err)
		return nil, false
	}
	return result, true
}

// buildEnrichmentPrompt embeds the manual hints and the most recent OCR
// transcripts (bounded to the last 5) into a single completion prompt.
func buildEnrichmentPrompt(fields Fields, payloads []ocr.Text) string {
	var texts []string
	for _, payload := range payloads {
		text := payload.Field(constants.FieldNotes)
		if text == "" {
			text = strings.TrimSpace(payload.Raw())
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) > 5 {
		texts = texts[len(texts)-5:]
	}

	var ocrSection strings.Builder
	for idx, text := range texts {
		if idx > 0 {
			ocrSection.WriteString("\n\n")
		}
		fmt.Fprintf(&ocrSection, "OCR #%d:\n%s", idx+1, text)
	}

	return "You are a vinyl archivist. Using the OCR transcripts below, produce structured metadata and respond ONLY with JSON " +
		`using keys {"artist":"","composer":"","record_name":"","catalog_number":"","label":"","year":"","location":"","notes":"","genre":"","key_signature":"","composer_code":""}. ` +
		"If the sleeve describes multiple distinct compositions, additionally include a \"records\" array with one such object per composition. " +
		"Keep catalog numbers verbatim, normalize names, capture any liner-note highlights in notes, and use empty strings when unsure. " +
		"Use the manual hints when they are present but otherwise rely on the OCR content.\n\n" +
		"Manual Hints:\n" +
		"- Artist: " + fields.Get(constants.FieldArtist) + "\n" +
		"- Composer: " + fields.Get(constants.FieldComposer) + "\n" +
		"- Record Name: " + fields.Get(constants.FieldRecordName) + "\n" +
		"- Catalog Number: " + fields.Get(constants.FieldCatalogNumber) + "\n" +
		"- Label: " + fields.Get(constants.FieldLabel) + "\n" +
		"- Year: " + fields.Get(constants.FieldYear) + "\n" +
		"- Location: " + fields.Get(constants.FieldLocation) + "\n" +
		"- Notes: " + fields.Get(constants.FieldNotes) + "\n\n" +
		"OCR Transcripts:\n" + ocrSection.String()
}

// recordsFromResult converts the model's records array into per-work field
// sets. Non-object entries and unknown keys are dropped; missing fields
// default to empty.
func recordsFromResult(records []any) []Fields {
	out := make([]Fields, 0, len(records))
	for _, entry := range records {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		fields := NewFields()
		for key, value := range obj {
			if constants.IsField(key) {
				fields.Set(key, stringValue(value))
			}
		}
		out = append(out, fields)
	}
	return out
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// HeuristicStrategy fills key_signature, genre, and composer_code with
// deterministic pattern matching over whatever evidence survived the
// earlier stages. It only ever writes fields that are still empty.
type HeuristicStrategy struct{}

func (HeuristicStrategy) Apply(_ context.Context, draft *Draft, payloads []ocr.Text) {
	if draft.Fields.Get(constants.FieldKeySignature) == "" {
		draft.Fields.Set(constants.FieldKeySignature, ExtractKey(draft.Fields, payloads))
	}
	if draft.Fields.Get(constants.FieldGenre) == "" {
		draft.Fields.Set(constants.FieldGenre, InferGenre(draft.Fields, payloads))
	}
	if draft.Fields.Get(constants.FieldComposerCode) == "" {
		draft.Fields.Set(constants.FieldComposerCode, ExtractComposerCode(draft.Fields, payloads))
	}
}
