package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beatrove/catalog/constants"
)

// Item is the physical catalog unit (one disc/sleeve). It owns one or more
// Works and accumulates cover-image references and raw OCR snapshots across
// repeated processing; both lists are append-only and keep submission order.
type Item struct {
	ID          uuid.UUID           `json:"id"`
	Works       []Work              `json:"works"`
	CoverImages []string            `json:"cover_image_urls"`
	RawOCR      []map[string]string `json:"raw_ocr_json"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Work is one musical/content unit with its own full field set, owned by
// exactly one Item. WorkIndex is contiguous starting at 0 within the item
// and defines display/storage order.
type Work struct {
	ID            uuid.UUID `json:"id"`
	ItemID        uuid.UUID `json:"item_id"`
	WorkIndex     int       `json:"work_index"`
	Artist        string    `json:"artist"`
	Composer      string    `json:"composer"`
	RecordName    string    `json:"record_name"`
	CatalogNumber string    `json:"catalog_number"`
	ComposerCode  string    `json:"composer_code"`
	Label         string    `json:"label"`
	Year          string    `json:"year"`
	Location      string    `json:"location"`
	Notes         string    `json:"notes"`
	Genre         string    `json:"genre"`
	KeySignature  string    `json:"key_signature"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WorkFromFields builds a Work from a field map, trimming values and
// ignoring anything outside the canonical field set.
func WorkFromFields(fields map[string]string) Work {
	w := Work{}
	for name, value := range fields {
		w.setField(name, strings.TrimSpace(value))
	}
	return w
}

// FieldMap returns the work's catalog fields keyed by canonical name.
func (w Work) FieldMap() map[string]string {
	return map[string]string{
		constants.FieldArtist:        w.Artist,
		constants.FieldComposer:      w.Composer,
		constants.FieldRecordName:    w.RecordName,
		constants.FieldCatalogNumber: w.CatalogNumber,
		constants.FieldComposerCode:  w.ComposerCode,
		constants.FieldLabel:         w.Label,
		constants.FieldYear:          w.Year,
		constants.FieldLocation:      w.Location,
		constants.FieldNotes:         w.Notes,
		constants.FieldGenre:         w.Genre,
		constants.FieldKeySignature:  w.KeySignature,
	}
}

func (w *Work) setField(name, value string) {
	switch name {
	case constants.FieldArtist:
		w.Artist = value
	case constants.FieldComposer:
		w.Composer = value
	case constants.FieldRecordName:
		w.RecordName = value
	case constants.FieldCatalogNumber:
		w.CatalogNumber = value
	case constants.FieldComposerCode:
		w.ComposerCode = value
	case constants.FieldLabel:
		w.Label = value
	case constants.FieldYear:
		w.Year = value
	case constants.FieldLocation:
		w.Location = value
	case constants.FieldNotes:
		w.Notes = value
	case constants.FieldGenre:
		w.Genre = value
	case constants.FieldKeySignature:
		w.KeySignature = value
	}
}
