package metadata

import (
	"github.com/beatrove/catalog/constants"
	"github.com/beatrove/catalog/internal/ocr"
)

// Merge combines manual input, normalized OCR payloads, and an optional
// previously stored record into one value per field. Precedence, applied
// independently per field:
//
//  1. manual value, if non-empty after trimming
//  2. first non-empty value across the OCR payloads, in submission order
//  3. the existing record's value (upsert/merge context only)
//  4. empty string
//
// The result does not depend on how many payloads were supplied beyond
// their order.
func Merge(manual Fields, payloads []ocr.Text, existing Fields) Fields {
	result := NewFields()
	for _, field := range constants.FieldNames {
		if v := manual.Get(field); v != "" {
			result[field] = v
			continue
		}
		if v := firstNonEmpty(payloads, field); v != "" {
			result[field] = v
			continue
		}
		if existing != nil {
			if v := existing.Get(field); v != "" {
				result[field] = v
				continue
			}
		}
	}
	return result
}

func firstNonEmpty(payloads []ocr.Text, field string) string {
	for _, payload := range payloads {
		if v := payload.Field(field); v != "" {
			return v
		}
	}
	return ""
}
