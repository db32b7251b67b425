package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beatrove/catalog/constants"
	"github.com/beatrove/catalog/internal/common"
	"github.com/beatrove/catalog/internal/metadata"
	"github.com/beatrove/catalog/internal/ocr"
	"github.com/beatrove/catalog/internal/repository"
)

// scriptedBackend reads the scratch file to prove the pipeline staged the
// upload, then returns a canned transcript.
type scriptedBackend struct {
	transcript string
	err        error
	calls      int
}

func (b *scriptedBackend) Name() string    { return "scripted" }
func (b *scriptedBackend) Available() bool { return true }

func (b *scriptedBackend) Extract(ctx context.Context, imagePath string) (any, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	if _, err := os.Stat(imagePath); err != nil {
		return nil, err
	}
	return b.transcript, nil
}

func newTestProcessor(t *testing.T, backend ocr.Provider) (*Processor, *repository.Store) {
	t.Helper()
	store, err := repository.Open(context.Background(), common.DatabaseConfig{
		DSN: filepath.Join(t.TempDir(), "catalog.db"),
	}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	chain := ocr.NewChainWith([]ocr.Provider{backend}, 1, nil)
	enricher := metadata.NewEnricherWith(metadata.HeuristicStrategy{})
	return NewProcessor(chain, enricher, store, t.TempDir(), nil), store
}

func TestProcessSubmissionRequiresCovers(t *testing.T) {
	proc, _ := newTestProcessor(t, &scriptedBackend{})

	_, err := proc.ProcessSubmission(context.Background(), Submission{
		Manual: map[string]string{constants.FieldArtist: "Mozart"},
	})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("ProcessSubmission(no covers) = %v, want ErrValidation", err)
	}
}

func TestProcessSubmissionFullPipeline(t *testing.T) {
	backend := &scriptedBackend{
		transcript: "Side A\nPiano Concerto in D minor KV 466\nWolfgang Amadeus Mozart\nDeutsche Grammophon",
	}
	proc, store := newTestProcessor(t, backend)

	item, err := proc.ProcessSubmission(context.Background(), Submission{
		Manual: map[string]string{
			constants.FieldArtist: "Friedrich Gulda",
			constants.FieldLabel:  "Deutsche Grammophon",
		},
		Covers: []CoverImage{{Filename: "front.jpg", Data: []byte("jpeg bytes")}},
	})
	if err != nil {
		t.Fatalf("ProcessSubmission() = %v", err)
	}
	if backend.calls == 0 {
		t.Fatal("OCR backend never ran")
	}

	if len(item.Works) != 1 {
		t.Fatalf("works = %d, want 1", len(item.Works))
	}
	work := item.Works[0]
	if work.Artist != "Friedrich Gulda" {
		t.Errorf("artist = %q, want manual value", work.Artist)
	}
	if work.Genre != "Classical" {
		t.Errorf("genre = %q, want heuristic Classical", work.Genre)
	}
	if work.KeySignature != "D Minor" {
		t.Errorf("key_signature = %q, want D Minor", work.KeySignature)
	}
	if work.ComposerCode != "KV 466" {
		t.Errorf("composer_code = %q, want KV 466", work.ComposerCode)
	}

	if len(item.CoverImages) != 1 || !strings.HasPrefix(item.CoverImages[0], "data:image/jpeg;base64,") {
		t.Errorf("covers = %v, want one jpeg data URL", item.CoverImages)
	}
	if len(item.RawOCR) != 1 || !strings.Contains(item.RawOCR[0]["raw_text"], "KV 466") {
		t.Errorf("raw ocr = %v, want transcript snapshot", item.RawOCR)
	}

	stored, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID() = %v", err)
	}
	if stored.Works[0].RecordName != work.RecordName {
		t.Errorf("stored record_name = %q, want %q", stored.Works[0].RecordName, work.RecordName)
	}
}

func TestProcessSubmissionSurvivesOCRFailure(t *testing.T) {
	proc, _ := newTestProcessor(t, &scriptedBackend{err: errors.New("backend down")})

	item, err := proc.ProcessSubmission(context.Background(), Submission{
		Manual: map[string]string{
			constants.FieldArtist:     "Miles Davis",
			constants.FieldRecordName: "Kind of Blue",
		},
		Covers: []CoverImage{{Filename: "front.jpg", Data: []byte("jpeg bytes")}},
	})
	if err != nil {
		t.Fatalf("ProcessSubmission() = %v, want success without OCR", err)
	}
	if len(item.RawOCR) != 0 {
		t.Errorf("raw ocr = %v, want none after backend failure", item.RawOCR)
	}
	if item.Works[0].Artist != "Miles Davis" {
		t.Errorf("artist = %q, want manual value", item.Works[0].Artist)
	}
}

func TestProcessSubmissionMergeFoldsIntoExistingItem(t *testing.T) {
	backend := &scriptedBackend{transcript: "Reissue pressing, gatefold sleeve"}
	proc, _ := newTestProcessor(t, backend)
	ctx := context.Background()

	first, err := proc.ProcessSubmission(ctx, Submission{
		Manual: map[string]string{
			constants.FieldArtist:     "Glenn Gould",
			constants.FieldRecordName: "Goldberg Variations",
			constants.FieldYear:       "1981",
		},
		Covers: []CoverImage{{Filename: "front.jpg", Data: []byte("front")}},
	})
	if err != nil {
		t.Fatalf("first ProcessSubmission() = %v", err)
	}

	second, err := proc.ProcessSubmission(ctx, Submission{
		Manual: map[string]string{
			constants.FieldArtist:     "Glenn Gould",
			constants.FieldRecordName: "Goldberg Variations",
		},
		Covers: []CoverImage{{Filename: "back.jpg", Data: []byte("back")}},
		Merge:  true,
	})
	if err != nil {
		t.Fatalf("second ProcessSubmission() = %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("merge created a new item: %s vs %s", second.ID, first.ID)
	}
	if len(second.CoverImages) != 2 {
		t.Errorf("covers = %d, want 2 after merge", len(second.CoverImages))
	}
	if got := second.Works[0].Year; got != "1981" {
		t.Errorf("year = %q, want value carried from existing item", got)
	}
}

func TestProcessSubmissionCleansScratchFiles(t *testing.T) {
	uploadDir := t.TempDir()
	store, err := repository.Open(context.Background(), common.DatabaseConfig{
		DSN: filepath.Join(t.TempDir(), "catalog.db"),
	}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	chain := ocr.NewChainWith([]ocr.Provider{&scriptedBackend{transcript: "text"}}, 1, nil)
	proc := NewProcessor(chain, metadata.NewEnricherWith(metadata.HeuristicStrategy{}), store, uploadDir, nil)

	_, err = proc.ProcessSubmission(context.Background(), Submission{
		Covers: []CoverImage{{Filename: "front.jpg", Data: []byte("front")}},
	})
	if err != nil {
		t.Fatalf("ProcessSubmission() = %v", err)
	}

	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir has %d leftover files, want 0", len(entries))
	}
}
