package metadata

import (
	"regexp"
	"strings"

	"github.com/beatrove/catalog/constants"
	"github.com/beatrove/catalog/internal/ocr"
)

var keyPattern = regexp.MustCompile(
	`(?i)([A-G](?:[#♯]|[b♭])?\s*(?:-?\s*(?:Dur|Moll|Major|Minor))|in\s+[A-G](?:[#♯]|[b♭])?\s+(?:major|minor))`,
)

var composerCodePattern = regexp.MustCompile(
	`(?i)\b(?:KV|K\.\s?V\.?|K\.|BWV|Hob\.|Op\.|No\.|D|S\.|HWV|Wq|BuxWV|RV|L|MWV|Kk|P\.)\s*[0-9IVX\-]+[a-zA-Z0-9\- ]*`,
)

var classicalHints = []string{
	"concerto", "konzert", "symphony", "sinfonie", "sonata", "suite",
	"prelude", "requiem", "oratorio", "kv ", "opus", "op.", "kv.", "k.", "catalogue",
}

var classicalLabels = []string{
	"deutsche grammophon", "dg ", "harmonia mundi", "philips", "emi classics",
	"sony classical", "naxos", "telarc", "decca", "archiv produktion", "ecm new series",
}

var classicalComposers = map[string]struct{}{
	"mozart": {}, "beethoven": {}, "bach": {}, "brahms": {}, "schubert": {},
	"schumann": {}, "chopin": {}, "liszt": {}, "haydn": {}, "tchaikovsky": {},
	"vivaldi": {}, "handel": {}, "debussy": {}, "ravel": {}, "mendelssohn": {},
	"strauss": {}, "mahler": {}, "wagner": {}, "prokofiev": {}, "stravinsky": {},
	"saint-saens": {}, "satie": {}, "dvorak": {}, "berlioz": {}, "rachmaninoff": {},
}

// ExtractKey scans the draft and OCR raw text for a musical key mention
// ("d-moll", "C-Dur", "in D minor") and returns it normalized to
// "<Note> Major"/"<Note> Minor", or empty when nothing matches.
func ExtractKey(fields Fields, payloads []ocr.Text) string {
	parts := []string{
		fields.Get(constants.FieldKeySignature),
		fields.Get(constants.FieldRecordName),
		fields.Get(constants.FieldNotes),
	}
	for _, payload := range payloads {
		parts = append(parts, payload.Raw())
	}
	candidates := joinNonEmpty(parts, " ")

	match := keyPattern.FindString(candidates)
	if match == "" {
		return ""
	}
	return normalizeKey(match)
}

// InferGenre returns the explicit genre unchanged when one is set, else
// checks label, composer, title, and finally notes/OCR text for classical
// signals. Anything without a classical signal stays unclassified.
func InferGenre(fields Fields, payloads []ocr.Text) string {
	if explicit := fields.Get(constants.FieldGenre); explicit != "" {
		return explicit
	}

	label := strings.ToLower(fields.Get(constants.FieldLabel))
	for _, hint := range classicalLabels {
		if strings.Contains(label, hint) {
			return "Classical"
		}
	}

	composer := strings.ToLower(fields.Get(constants.FieldComposer))
	if _, ok := classicalComposers[composer]; ok {
		return "Classical"
	}

	recordName := strings.ToLower(fields.Get(constants.FieldRecordName))
	for _, hint := range classicalHints {
		if strings.Contains(recordName, hint) {
			return "Classical"
		}
	}

	parts := []string{strings.ToLower(fields.Get(constants.FieldNotes))}
	for _, payload := range payloads {
		parts = append(parts, strings.ToLower(payload.Raw()))
	}
	notes := joinNonEmpty(parts, " ")
	for _, hint := range classicalHints {
		if strings.Contains(notes, hint) {
			return "Classical"
		}
	}

	return ""
}

// ExtractComposerCode finds a catalogue token (KV 466, BWV 1047, Op. 27,
// Hob. XVI...) across the draft fields and OCR payloads. Sources are
// searched in fixed priority order; first match wins.
func ExtractComposerCode(fields Fields, payloads []ocr.Text) string {
	sources := []string{
		fields.Get(constants.FieldComposerCode),
		fields.Get(constants.FieldRecordName),
		fields.Get(constants.FieldNotes),
	}
	for _, payload := range payloads {
		sources = append(sources, payload.Field(constants.FieldRecordName))
	}
	for _, payload := range payloads {
		sources = append(sources, payload.Field(constants.FieldNotes))
	}
	for _, payload := range payloads {
		sources = append(sources, payload.Raw())
	}

	for _, text := range sources {
		if text == "" {
			continue
		}
		if match := composerCodePattern.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return ""
}

var baseNotePattern = regexp.MustCompile(`(?i)[A-G](?:#|b)?`)

func normalizeKey(fragment string) string {
	clean := strings.TrimSpace(fragment)
	clean = strings.NewReplacer("♯", "#", "♭", "b", "-", " ").Replace(clean)
	cleanLower := strings.ToLower(clean)

	note := baseNotePattern.FindString(clean)
	if note == "" {
		if clean == "" {
			return ""
		}
		return strings.ToUpper(clean[:1]) + clean[1:]
	}
	note = strings.ToUpper(note[:1]) + note[1:]

	suffix := "Major"
	if strings.Contains(cleanLower, "moll") || strings.Contains(cleanLower, "minor") {
		suffix = "Minor"
	}
	return note + " " + suffix
}

func joinNonEmpty(parts []string, sep string) string {
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
