package metadata

import (
	"strings"

	"github.com/beatrove/catalog/constants"
)

// Fields holds one value per catalog field. Empty string means "unknown";
// values are never absent for canonical field names once a Fields has gone
// through NewFields or CleanFields.
type Fields map[string]string

// NewFields returns a Fields with every canonical field set to empty.
func NewFields() Fields {
	f := make(Fields, len(constants.FieldNames))
	for _, name := range constants.FieldNames {
		f[name] = ""
	}
	return f
}

// CleanFields trims incoming values and drops anything outside the
// canonical field set.
func CleanFields(in map[string]string) Fields {
	f := NewFields()
	for name, value := range in {
		if constants.IsField(name) {
			f[name] = strings.TrimSpace(value)
		}
	}
	return f
}

// Get returns the trimmed value for a field.
func (f Fields) Get(name string) string {
	return strings.TrimSpace(f[name])
}

// Set stores a trimmed value; unknown field names are ignored.
func (f Fields) Set(name, value string) {
	if constants.IsField(name) {
		f[name] = strings.TrimSpace(value)
	}
}

// Clone returns an independent copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Draft is the in-progress metadata set passed through the merge and
// enrichment stages before decomposition into works. Records carries the
// per-work entries a multi-work enrichment result produced; when it is
// empty the top-level Fields describe the single work.
type Draft struct {
	Fields  Fields
	Records []Fields
}

// NewDraft wraps merged fields into a draft ready for enrichment.
func NewDraft(fields Fields) *Draft {
	if fields == nil {
		fields = NewFields()
	}
	return &Draft{Fields: fields}
}
