package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/beatrove/catalog/internal/entity"
)

func createLegacyTable(t *testing.T, store *Store) {
	t.Helper()
	_, err := store.db.Exec(`CREATE TABLE records (
		id TEXT PRIMARY KEY,
		artist TEXT NOT NULL DEFAULT '',
		composer TEXT NOT NULL DEFAULT '',
		record_name TEXT NOT NULL DEFAULT '',
		catalog_number TEXT NOT NULL DEFAULT '',
		composer_code TEXT NOT NULL DEFAULT '',
		label TEXT NOT NULL DEFAULT '',
		year TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		genre TEXT NOT NULL DEFAULT '',
		key_signature TEXT NOT NULL DEFAULT '',
		cover_image_path TEXT NOT NULL DEFAULT '',
		raw_ocr_json TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
}

func TestBackfillNoLegacyTable(t *testing.T) {
	store := openTestStore(t)

	migrated, err := store.BackfillLegacyWorks(context.Background())
	if err != nil {
		t.Fatalf("BackfillLegacyWorks() = %v", err)
	}
	if migrated != 0 {
		t.Errorf("migrated = %d, want 0 on fresh install", migrated)
	}
}

func TestBackfillLegacyRows(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	createLegacyTable(t, store)

	legacyID := uuid.New().String()
	_, err := store.db.Exec(
		`INSERT INTO records (id, artist, record_name, genre, cover_image_path, raw_ocr_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		legacyID, "Miles Davis", "Kind of Blue", "Jazz",
		`["covers/kind-of-blue.jpg"]`,
		`{"raw_text":"Side A"}`,
		"2020-01-02T03:04:05Z", "2020-01-02T03:04:05Z",
	)
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}
	_, err = store.db.Exec(
		`INSERT INTO records (id, artist, record_name, cover_image_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		"not-a-uuid", "Bill Evans", "Waltz for Debby",
		"covers/waltz.jpg",
		"2021-06-07T08:09:10Z", "2021-06-07T08:09:10Z",
	)
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	migrated, err := store.BackfillLegacyWorks(ctx)
	if err != nil {
		t.Fatalf("BackfillLegacyWorks() = %v", err)
	}
	if migrated != 2 {
		t.Fatalf("migrated = %d, want 2", migrated)
	}

	id := uuid.MustParse(legacyID)
	item, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID(legacy id) = %v", err)
	}
	if len(item.Works) != 1 {
		t.Fatalf("works = %d, want 1", len(item.Works))
	}
	work := item.Works[0]
	if work.WorkIndex != 0 || work.Artist != "Miles Davis" || work.Genre != "Jazz" {
		t.Errorf("work = %+v", work)
	}
	if len(item.CoverImages) != 1 || item.CoverImages[0] != "covers/kind-of-blue.jpg" {
		t.Errorf("covers = %v", item.CoverImages)
	}
	if len(item.RawOCR) != 1 || item.RawOCR[0]["raw_text"] != "Side A" {
		t.Errorf("raw ocr = %v", item.RawOCR)
	}

	// a bare path and an unparseable id still migrate
	items, err := store.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems() = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	// second run is a no-op because works already exist
	migrated, err = store.BackfillLegacyWorks(ctx)
	if err != nil {
		t.Fatalf("BackfillLegacyWorks(second run) = %v", err)
	}
	if migrated != 0 {
		t.Errorf("second run migrated = %d, want 0", migrated)
	}
}

func TestBackfillSkipsWhenWorksExist(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	createLegacyTable(t, store)

	item := testItem(entity.Work{WorkIndex: 0, RecordName: "Already There"})
	if err := store.InsertItem(ctx, item); err != nil {
		t.Fatalf("InsertItem() = %v", err)
	}
	_, err := store.db.Exec(
		`INSERT INTO records (id, record_name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), "Legacy Leftover", "2020-01-01T00:00:00Z", "2020-01-01T00:00:00Z",
	)
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	migrated, err := store.BackfillLegacyWorks(ctx)
	if err != nil {
		t.Fatalf("BackfillLegacyWorks() = %v", err)
	}
	if migrated != 0 {
		t.Errorf("migrated = %d, want 0 when works already exist", migrated)
	}
}
