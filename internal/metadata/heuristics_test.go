package metadata

import (
	"testing"

	"github.com/beatrove/catalog/constants"
	"github.com/beatrove/catalog/internal/ocr"
)

func TestExtractKey(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		raw    string
		want   string
	}{
		{
			name:   "german minor notation",
			fields: map[string]string{constants.FieldRecordName: "Klavierkonzert Nr. 20 d-moll"},
			want:   "D Minor",
		},
		{
			name:   "german major notation",
			fields: map[string]string{constants.FieldNotes: "Sinfonie Nr. 41 C-Dur"},
			want:   "C Major",
		},
		{
			name: "english in-key phrase from raw text",
			raw:  "Piano Concerto No. 20 in D minor, live recording",
			want: "D Minor",
		},
		{
			name:   "sharp note",
			fields: map[string]string{constants.FieldNotes: "Etude cis-moll... F# Major on side B"},
			want:   "F# Major",
		},
		{
			name: "no key mention",
			raw:  "A Love Supreme, recorded December 1964",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payloads []ocr.Text
			if tt.raw != "" {
				payloads = append(payloads, ocr.Normalize(tt.raw))
			}
			got := ExtractKey(CleanFields(tt.fields), payloads)
			if got != tt.want {
				t.Errorf("ExtractKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInferGenre(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		raw    string
		want   string
	}{
		{
			name:   "explicit genre is never replaced",
			fields: map[string]string{constants.FieldGenre: "Jazz", constants.FieldComposer: "Mozart"},
			want:   "Jazz",
		},
		{
			name:   "classical label",
			fields: map[string]string{constants.FieldLabel: "Deutsche Grammophon"},
			want:   "Classical",
		},
		{
			name:   "classical composer",
			fields: map[string]string{constants.FieldComposer: "Beethoven"},
			want:   "Classical",
		},
		{
			name:   "classical hint in title",
			fields: map[string]string{constants.FieldRecordName: "Violin Concerto in E minor"},
			want:   "Classical",
		},
		{
			name: "classical hint in raw ocr text",
			raw:  "Grosse Sinfonie, Konzert fuer Klavier und Orchester",
			want: "Classical",
		},
		{
			name:   "no signal stays unclassified",
			fields: map[string]string{constants.FieldRecordName: "Kind of Blue"},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payloads []ocr.Text
			if tt.raw != "" {
				payloads = append(payloads, ocr.Normalize(tt.raw))
			}
			got := InferGenre(CleanFields(tt.fields), payloads)
			if got != tt.want {
				t.Errorf("InferGenre() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractComposerCode(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		raw    string
		want   string
	}{
		{
			name:   "koechel number in title",
			fields: map[string]string{constants.FieldRecordName: "Piano Concerto in D minor KV 466"},
			want:   "KV 466",
		},
		{
			name:   "bwv in notes",
			fields: map[string]string{constants.FieldNotes: "includes BWV 1047 and BWV 1048"},
			want:   "BWV 1047 and BWV 1048",
		},
		{
			name: "opus number from raw text",
			raw:  "Sonate Op. 27 No. 2 Mondschein",
			want: "Op. 27 No",
		},
		{
			name:   "explicit composer_code wins",
			fields: map[string]string{constants.FieldComposerCode: "Hob. XVI-52", constants.FieldRecordName: "KV 331"},
			want:   "Hob. XVI-52",
		},
		{
			name: "nothing catalog-shaped",
			raw:  "Abbey Road remaster",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payloads []ocr.Text
			if tt.raw != "" {
				payloads = append(payloads, ocr.Normalize(tt.raw))
			}
			got := ExtractComposerCode(CleanFields(tt.fields), payloads)
			if got != tt.want {
				t.Errorf("ExtractComposerCode() = %q, want %q", got, tt.want)
			}
		})
	}
}
