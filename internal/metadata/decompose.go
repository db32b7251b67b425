package metadata

import (
	"github.com/beatrove/catalog/constants"
	"github.com/beatrove/catalog/internal/entity"
)

// Decompose expands one enriched draft into the item's ordered work
// entries. A multi-work enrichment result (non-empty Records) produces one
// work per entry from that entry's own values; otherwise a single work is
// built from the draft, falling back field-by-field to the original manual
// values where the draft is empty. work_index follows emission order.
func Decompose(draft *Draft, manual Fields) []entity.Work {
	if len(draft.Records) > 0 {
		works := make([]entity.Work, 0, len(draft.Records))
		for idx, record := range draft.Records {
			work := entity.WorkFromFields(record)
			work.WorkIndex = idx
			works = append(works, work)
		}
		return works
	}

	fields := make(map[string]string, len(constants.FieldNames))
	for _, name := range constants.FieldNames {
		value := draft.Fields.Get(name)
		if value == "" {
			value = manual.Get(name)
		}
		fields[name] = value
	}
	work := entity.WorkFromFields(fields)
	work.WorkIndex = 0
	return []entity.Work{work}
}
