package ocr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/beatrove/catalog/constants"
)

// Text is the canonical output shape of any OCR backend: the catalog field
// set plus a raw_text key holding a flattened rendering of the whole
// response. Typed fields default to empty; only legacy backends that return
// field-shaped JSON populate them. Newer backends emit raw_text only and
// rely on downstream enrichment.
type Text map[string]string

// NewText returns an all-empty normalized payload.
func NewText() Text {
	t := make(Text, len(constants.FieldNames)+1)
	for _, name := range constants.FieldNames {
		t[name] = ""
	}
	t[constants.RawTextKey] = ""
	return t
}

// Empty reports whether the payload carries no content at all.
func (t Text) Empty() bool {
	for _, v := range t {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Raw returns the flattened raw_text content.
func (t Text) Raw() string {
	return t[constants.RawTextKey]
}

// Field returns the trimmed value of a typed field, empty for unknown keys.
func (t Text) Field(name string) string {
	return strings.TrimSpace(t[name])
}

// Normalize converts an arbitrary backend response (string, mapping, or
// sequence) into the canonical shape. Malformed or absent input degrades to
// an all-empty Text; nothing propagates past this function.
func Normalize(payload any) Text {
	base := NewText()
	if payload == nil {
		return base
	}

	switch v := payload.(type) {
	case string:
		base[constants.RawTextKey] = strings.TrimSpace(v)
	default:
		base[constants.RawTextKey] = FlattenValue(v, 0)
	}
	return base
}

// FlattenValue renders nested JSON-like values as indented key/value text.
// Map keys are sorted so the rendering is deterministic; nil entries are
// skipped.
func FlattenValue(value any, indent int) string {
	switch v := value.(type) {
	case nil:
		return ""
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		lines := make([]string, 0, len(keys))
		prefix := strings.Repeat(" ", indent)
		for _, k := range keys {
			nested := FlattenValue(v[k], indent+2)
			if strings.Contains(nested, "\n") {
				lines = append(lines, fmt.Sprintf("%s%s:\n%s", prefix, k, nested))
			} else {
				lines = append(lines, fmt.Sprintf("%s%s: %s", prefix, k, nested))
			}
		}
		return strings.TrimSpace(strings.Join(lines, "\n"))
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			if part := FlattenValue(item, indent+2); part != "" {
				parts = append(parts, part)
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
