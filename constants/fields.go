package constants

// FieldNames is the closed set of catalog metadata fields, in canonical
// order. Every layer (OCR normalization, merge, enrichment, storage) works
// against exactly this set; an empty string means "unknown".
var FieldNames = []string{
	FieldArtist,
	FieldComposer,
	FieldRecordName,
	FieldCatalogNumber,
	FieldComposerCode,
	FieldLabel,
	FieldYear,
	FieldLocation,
	FieldNotes,
	FieldGenre,
	FieldKeySignature,
}

const (
	FieldArtist        = "artist"
	FieldComposer      = "composer"
	FieldRecordName    = "record_name"
	FieldCatalogNumber = "catalog_number"
	FieldComposerCode  = "composer_code"
	FieldLabel         = "label"
	FieldYear          = "year"
	FieldLocation      = "location"
	FieldNotes         = "notes"
	FieldGenre         = "genre"
	FieldKeySignature  = "key_signature"
)

// RawTextKey is the catch-all key on normalized OCR payloads holding the
// flattened textual rendering of the backend response. It is not a catalog
// field and never reaches storage columns.
const RawTextKey = "raw_text"

var fieldSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(FieldNames))
	for _, name := range FieldNames {
		s[name] = struct{}{}
	}
	return s
}()

// IsField reports whether name is one of the canonical catalog fields.
func IsField(name string) bool {
	_, ok := fieldSet[name]
	return ok
}
