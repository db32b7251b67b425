package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beatrove/catalog/internal/common"
	"github.com/beatrove/catalog/internal/entity"
)

// MatchCriteria carries the identifying fields for work-level identity
// resolution. Empty values mean "not provided".
type MatchCriteria struct {
	Artist        string
	RecordName    string
	CatalogNumber string
}

// Empty reports whether no identifying field was supplied at all.
func (c MatchCriteria) Empty() bool {
	return strings.TrimSpace(c.Artist) == "" &&
		strings.TrimSpace(c.RecordName) == "" &&
		strings.TrimSpace(c.CatalogNumber) == ""
}

// ItemRepository is the persistence contract the pipeline and server depend
// on. Individual writes are atomic; cross-call atomicity (lookup then
// insert) is explicitly not guaranteed.
type ItemRepository interface {
	InsertItem(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	ListItems(ctx context.Context) ([]*entity.Item, error)
	UpdateItem(ctx context.Context, item *entity.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	FindMatchingItem(ctx context.Context, criteria MatchCriteria) (*entity.Item, error)
	FindMatchingWork(ctx context.Context, criteria MatchCriteria) (*entity.Work, error)
}

const workColumns = `id, item_id, work_index, artist, composer, record_name,
	catalog_number, composer_code, label, year, location, notes, genre,
	key_signature, created_at, updated_at`

// InsertItem stores an item and its works in one transaction.
func (s *Store) InsertItem(ctx context.Context, item *entity.Item) error {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	covers, rawOCR, err := encodeLists(item)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		s.rebind(`INSERT INTO items (id, cover_images, raw_ocr, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`),
		item.ID.String(), covers, rawOCR,
		formatTime(item.CreatedAt), formatTime(item.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	for i := range item.Works {
		work := &item.Works[i]
		work.ItemID = item.ID
		if work.ID == uuid.Nil {
			work.ID = uuid.New()
		}
		if work.CreatedAt.IsZero() {
			work.CreatedAt = now
		}
		work.UpdatedAt = now
		if err := insertWork(ctx, tx, s, work); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

func insertWork(ctx context.Context, tx *sql.Tx, s *Store, work *entity.Work) error {
	_, err := tx.ExecContext(ctx,
		s.rebind(`INSERT INTO works (`+workColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		work.ID.String(), work.ItemID.String(), work.WorkIndex,
		work.Artist, work.Composer, work.RecordName, work.CatalogNumber,
		work.ComposerCode, work.Label, work.Year, work.Location, work.Notes,
		work.Genre, work.KeySignature,
		formatTime(work.CreatedAt), formatTime(work.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert work %d: %w", work.WorkIndex, err)
	}
	return nil
}

// GetByID loads one item with its works, ordered by work_index.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, cover_images, raw_ocr, created_at, updated_at
			FROM items WHERE id = ?`),
		id.String(),
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	works, err := s.worksForItems(ctx, []uuid.UUID{item.ID})
	if err != nil {
		return nil, err
	}
	item.Works = works[item.ID]
	return item, nil
}

// ListItems returns all items with their works, newest first.
func (s *Store) ListItems(ctx context.Context) ([]*entity.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, cover_images, raw_ocr, created_at, updated_at
			FROM items ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []*entity.Item
	var ids []uuid.UUID
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		ids = append(ids, item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	works, err := s.worksForItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		item.Works = works[item.ID]
	}
	return items, nil
}

// UpdateItem rewrites the item's evidence lists and replaces its works,
// bumping updated_at. Callers are responsible for keeping the evidence
// lists append-only.
func (s *Store) UpdateItem(ctx context.Context, item *entity.Item) error {
	item.UpdatedAt = time.Now().UTC()

	covers, rawOCR, err := encodeLists(item)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE items SET cover_images = ?, raw_ocr = ?, updated_at = ? WHERE id = ?`),
		covers, rawOCR, formatTime(item.UpdatedAt), item.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		s.rebind(`DELETE FROM works WHERE item_id = ?`), item.ID.String()); err != nil {
		return fmt.Errorf("clear works: %w", err)
	}
	now := item.UpdatedAt
	for i := range item.Works {
		work := &item.Works[i]
		work.ItemID = item.ID
		if work.ID == uuid.Nil {
			work.ID = uuid.New()
		}
		if work.CreatedAt.IsZero() {
			work.CreatedAt = now
		}
		work.UpdatedAt = now
		if err := insertWork(ctx, tx, s, work); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// DeleteItem removes an item; its works go with it.
func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		s.rebind(`DELETE FROM works WHERE item_id = ?`), id.String()); err != nil {
		return fmt.Errorf("delete works: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		s.rebind(`DELETE FROM items WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return tx.Commit()
}

// FindMatchingItem resolves item-level identity for upsert flows: a work
// whose artist and record name both match, or whose non-empty catalog
// number matches, identifies its item. The most recently created item wins.
func (s *Store) FindMatchingItem(ctx context.Context, criteria MatchCriteria) (*entity.Item, error) {
	if criteria.Empty() {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT i.id FROM items i
			JOIN works w ON w.item_id = i.id
			WHERE (w.artist != '' AND LOWER(w.artist) = LOWER(?) AND LOWER(w.record_name) = LOWER(?))
			   OR (w.catalog_number != '' AND LOWER(w.catalog_number) = LOWER(?))
			ORDER BY i.created_at DESC
			LIMIT 1`),
		criteria.Artist, criteria.RecordName, criteria.CatalogNumber,
	)

	var idStr string
	if err := row.Scan(&idStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find matching item: %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse item id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// FindMatchingWork resolves work-level identity. The query is an OR over
// independently constructed conditions: a provided catalog number always
// contributes one; artist+record_name contribute a combined condition when
// both are present, otherwise whichever is present contributes alone. With
// no identifying field at all the resolver reports no match without
// touching the database.
func (s *Store) FindMatchingWork(ctx context.Context, criteria MatchCriteria) (*entity.Work, error) {
	artist := strings.TrimSpace(criteria.Artist)
	recordName := strings.TrimSpace(criteria.RecordName)
	catalogNumber := strings.TrimSpace(criteria.CatalogNumber)

	var conds []string
	var args []any
	if catalogNumber != "" {
		conds = append(conds, `(catalog_number != '' AND LOWER(catalog_number) = LOWER(?))`)
		args = append(args, catalogNumber)
	}
	switch {
	case artist != "" && recordName != "":
		conds = append(conds, `(LOWER(artist) = LOWER(?) AND LOWER(record_name) = LOWER(?))`)
		args = append(args, artist, recordName)
	case recordName != "":
		conds = append(conds, `LOWER(record_name) = LOWER(?)`)
		args = append(args, recordName)
	case artist != "":
		conds = append(conds, `LOWER(artist) = LOWER(?)`)
		args = append(args, artist)
	}
	if len(conds) == 0 {
		return nil, nil
	}

	query := `SELECT ` + workColumns + ` FROM works WHERE ` +
		strings.Join(conds, " OR ") +
		` ORDER BY created_at DESC LIMIT 1`

	row := s.db.QueryRowContext(ctx, s.rebind(query), args...)
	work, err := scanWork(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return work, nil
}

func (s *Store) worksForItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]entity.Work, error) {
	out := make(map[uuid.UUID][]entity.Work, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id.String()
	}

	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+workColumns+` FROM works WHERE item_id IN (`+
			strings.Join(placeholders, ", ")+`) ORDER BY item_id, work_index`),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("load works: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, err
		}
		out[work.ItemID] = append(out[work.ItemID], *work)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate works: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*entity.Item, error) {
	var idStr, covers, rawOCR, createdAt, updatedAt string
	if err := row.Scan(&idStr, &covers, &rawOCR, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse item id: %w", err)
	}

	item := &entity.Item{
		ID:        id,
		CreatedAt: parseTime(createdAt),
		UpdatedAt: parseTime(updatedAt),
	}
	// malformed stored blobs degrade to empty lists, not errors
	if err := json.Unmarshal([]byte(covers), &item.CoverImages); err != nil {
		item.CoverImages = nil
	}
	if err := json.Unmarshal([]byte(rawOCR), &item.RawOCR); err != nil {
		item.RawOCR = nil
	}
	return item, nil
}

func scanWork(row scanner) (*entity.Work, error) {
	var idStr, itemIDStr, createdAt, updatedAt string
	work := &entity.Work{}
	err := row.Scan(
		&idStr, &itemIDStr, &work.WorkIndex,
		&work.Artist, &work.Composer, &work.RecordName, &work.CatalogNumber,
		&work.ComposerCode, &work.Label, &work.Year, &work.Location,
		&work.Notes, &work.Genre, &work.KeySignature,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	work.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse work id: %w", err)
	}
	work.ItemID, err = uuid.Parse(itemIDStr)
	if err != nil {
		return nil, fmt.Errorf("parse work item id: %w", err)
	}
	work.CreatedAt = parseTime(createdAt)
	work.UpdatedAt = parseTime(updatedAt)
	return work, nil
}

func encodeLists(item *entity.Item) (covers string, rawOCR string, err error) {
	coverBytes, err := json.Marshal(nonNilStrings(item.CoverImages))
	if err != nil {
		return "", "", fmt.Errorf("encode cover images: %w", err)
	}
	rawBytes, err := json.Marshal(nonNilMaps(item.RawOCR))
	if err != nil {
		return "", "", fmt.Errorf("encode raw ocr: %w", err)
	}
	return string(coverBytes), string(rawBytes), nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilMaps(in []map[string]string) []map[string]string {
	if in == nil {
		return []map[string]string{}
	}
	return in
}

// timeLayout keeps a fixed-width fraction so lexicographic ORDER BY on the
// stored text matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
