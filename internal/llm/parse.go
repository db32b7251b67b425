package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	reOpenFence = regexp.MustCompile("^```[a-zA-Z0-9]*\\s*")
	reBraceSpan = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseObject recovers a JSON object from model output: direct parse first,
// then with markdown fences stripped, then the first {...} span in the
// text. Returns false when nothing parseable is left; callers treat that
// the same as a transport failure.
func ParseObject(text string) (map[string]any, bool) {
	clean := stripMarkdownFences(strings.TrimSpace(text))

	var obj map[string]any
	if err := json.Unmarshal([]byte(clean), &obj); err == nil {
		return obj, true
	}

	span := reBraceSpan.FindString(clean)
	if span == "" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func stripMarkdownFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = reOpenFence.ReplaceAllString(text, "")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
