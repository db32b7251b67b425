package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/beatrove/catalog/internal/entity"
)

// BackfillLegacyWorks promotes rows of the legacy flat records table
// (cataloged before items owned separate works) into item+work pairs. The
// routine is idempotent: it is gated on the works table being empty, so
// running it at every startup is safe. A missing legacy table is not an
// error; there is simply nothing to backfill.
func (s *Store) BackfillLegacyWorks(ctx context.Context) (int, error) {
	var existing int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM works").Scan(&existing); err != nil {
		return 0, fmt.Errorf("count works: %w", err)
	}
	if existing > 0 {
		s.logger.Debug("backfill.skip", "works", existing)
		return 0, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, artist, composer, record_name, catalog_number, composer_code,
			label, year, location, notes, genre, key_signature,
			cover_image_path, raw_ocr_json, created_at, updated_at
		FROM records ORDER BY created_at`)
	if err != nil {
		// no legacy table: fresh installation
		s.logger.Debug("backfill.no_legacy_table", "error", err)
		return 0, nil
	}
	defer func() {
		_ = rows.Close()
	}()

	type legacyRow struct {
		item entity.Item
		work entity.Work
	}
	var legacy []legacyRow
	for rows.Next() {
		var idStr, covers, rawOCR, createdAt, updatedAt string
		var w entity.Work
		err := rows.Scan(
			&idStr, &w.Artist, &w.Composer, &w.RecordName, &w.CatalogNumber,
			&w.ComposerCode, &w.Label, &w.Year, &w.Location, &w.Notes,
			&w.Genre, &w.KeySignature,
			&covers, &rawOCR, &createdAt, &updatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("scan legacy record: %w", err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			id = uuid.New()
		}
		item := entity.Item{
			ID:        id,
			CreatedAt: parseTimeOrNow(createdAt),
			UpdatedAt: parseTimeOrNow(updatedAt),
		}
		item.CoverImages = decodeLegacyStrings(covers)
		item.RawOCR = decodeLegacyMaps(rawOCR)
		w.WorkIndex = 0
		w.CreatedAt = item.CreatedAt
		w.UpdatedAt = item.UpdatedAt
		legacy = append(legacy, legacyRow{item: item, work: w})
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate legacy records: %w", err)
	}

	migrated := 0
	for _, row := range legacy {
		row.item.Works = []entity.Work{row.work}
		if err := s.InsertItem(ctx, &row.item); err != nil {
			return migrated, fmt.Errorf("backfill item %s: %w", row.item.ID, err)
		}
		migrated++
	}
	if migrated > 0 {
		s.logger.Info("backfill.done", "items", migrated)
	}
	return migrated, nil
}

// decodeLegacyStrings accepts the historical encodings of the cover list:
// a JSON array, a single JSON string, or a bare path.
func decodeLegacyStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil && single != "" {
		return []string{single}
	}
	return []string{raw}
}

// decodeLegacyMaps accepts either a JSON array of payloads or one payload
// object; anything else degrades to no snapshots.
func decodeLegacyMaps(raw string) []map[string]string {
	if raw == "" {
		return nil
	}
	var list []map[string]string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	var single map[string]string
	if err := json.Unmarshal([]byte(raw), &single); err == nil && len(single) > 0 {
		return []map[string]string{single}
	}
	return nil
}

func parseTimeOrNow(s string) time.Time {
	if t := parseTime(s); !t.IsZero() {
		return t
	}
	return time.Now().UTC()
}
