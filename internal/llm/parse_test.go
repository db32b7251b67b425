package llm

import "testing"

func TestParseObject(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantOK  bool
		wantKey string
		wantVal string
	}{
		{
			name:    "plain json object",
			text:    `{"genre":"Classical"}`,
			wantOK:  true,
			wantKey: "genre",
			wantVal: "Classical",
		},
		{
			name:    "json fenced block",
			text:    "```json\n{\"genre\":\"Jazz\"}\n```",
			wantOK:  true,
			wantKey: "genre",
			wantVal: "Jazz",
		},
		{
			name:    "bare fence without language tag",
			text:    "```\n{\"artist\":\"Coltrane\"}\n```",
			wantOK:  true,
			wantKey: "artist",
			wantVal: "Coltrane",
		},
		{
			name:    "object buried in prose",
			text:    `Sure! Here is the metadata: {"label":"Decca"} hope that helps.`,
			wantOK:  true,
			wantKey: "label",
			wantVal: "Decca",
		},
		{
			name:   "no object at all",
			text:   "I could not read the sleeve.",
			wantOK: false,
		},
		{
			name:   "empty input",
			text:   "",
			wantOK: false,
		},
		{
			name:   "braces but not valid json",
			text:   "{this is not json}",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, ok := ParseObject(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ParseObject() ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if got, _ := obj[tt.wantKey].(string); got != tt.wantVal {
				t.Errorf("obj[%q] = %q, want %q", tt.wantKey, got, tt.wantVal)
			}
		})
	}
}

func TestValidateEnrichment(t *testing.T) {
	valid := map[string]any{
		"record_name": "Symphonie Fantastique",
		"year":        float64(1830),
		"records": []any{
			map[string]any{"record_name": "Movement I"},
		},
	}
	if err := ValidateEnrichment(valid); err != nil {
		t.Errorf("ValidateEnrichment(valid) = %v", err)
	}

	invalid := map[string]any{
		"records": "not an array",
	}
	if err := ValidateEnrichment(invalid); err == nil {
		t.Error("ValidateEnrichment should reject a non-array records value")
	}
}
