package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beatrove/catalog/constants"
	"github.com/beatrove/catalog/internal/common"
	"github.com/beatrove/catalog/internal/entity"
	"github.com/beatrove/catalog/internal/metadata"
	"github.com/beatrove/catalog/internal/ocr"
	"github.com/beatrove/catalog/internal/repository"
)

// CoverImage is one uploaded sleeve photo, already decoded from transport.
type CoverImage struct {
	Filename string
	Data     []byte
}

// Submission is everything one catalog request carries: manual field
// values, cover images, and whether evidence should be merged into an
// already-known item instead of always creating a new one.
type Submission struct {
	Manual map[string]string
	Covers []CoverImage
	Merge  bool
}

// Processor coordinates the resolution pipeline: OCR source chain, field
// merge, enrichment, work decomposition, and identity resolution, ending
// in one persisted item.
type Processor struct {
	logger    *slog.Logger
	chain     *ocr.Chain
	enricher  *metadata.Enricher
	repo      repository.ItemRepository
	uploadDir string
}

func NewProcessor(chain *ocr.Chain, enricher *metadata.Enricher, repo repository.ItemRepository, uploadDir string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	return &Processor{
		logger:    logger,
		chain:     chain,
		enricher:  enricher,
		repo:      repo,
		uploadDir: uploadDir,
	}
}

// ProcessSubmission runs the full pipeline for one submission. The only
// failures that propagate are the missing-covers validation and storage
// errors; a dead OCR backend or LLM endpoint merely means fewer fields get
// filled in.
func (p *Processor) ProcessSubmission(ctx context.Context, sub Submission) (*entity.Item, error) {
	if len(sub.Covers) == 0 {
		return nil, common.NewAppError("NO_COVERS", "at least one cover image is required", common.ErrValidation)
	}

	manual := metadata.CleanFields(sub.Manual)
	itemID := uuid.New()
	start := time.Now()

	var coverURLs []string
	var payloads []ocr.Text
	for _, cover := range sub.Covers {
		if len(cover.Data) == 0 {
			continue
		}
		coverURLs = append(coverURLs, dataURL(cover))

		text := p.extractCover(ctx, itemID, cover)
		if !text.Empty() {
			payloads = append(payloads, text)
		}
	}

	var existing *entity.Item
	if sub.Merge {
		var err error
		existing, err = p.repo.FindMatchingItem(ctx, repository.MatchCriteria{
			Artist:        manual.Get(constants.FieldArtist),
			RecordName:    manual.Get(constants.FieldRecordName),
			CatalogNumber: manual.Get(constants.FieldCatalogNumber),
		})
		if err != nil {
			// resolution failure must not block cataloging
			p.logger.Warn("pipeline.identity.lookup_failed", "error", err)
			existing = nil
		}
	}

	var existingFields metadata.Fields
	if existing != nil && len(existing.Works) > 0 {
		existingFields = metadata.CleanFields(existing.Works[0].FieldMap())
	}

	merged := metadata.Merge(manual, payloads, existingFields)
	draft := p.enricher.Enrich(ctx, metadata.NewDraft(merged), payloads)
	works := metadata.Decompose(draft, manual)

	snapshots := make([]map[string]string, 0, len(payloads))
	for _, payload := range payloads {
		snapshots = append(snapshots, map[string]string(payload))
	}

	var item *entity.Item
	if existing != nil {
		// evidence lists only grow; order reflects submission order
		existing.CoverImages = append(existing.CoverImages, coverURLs...)
		existing.RawOCR = append(existing.RawOCR, snapshots...)
		existing.Works = works
		if err := p.repo.UpdateItem(ctx, existing); err != nil {
			return nil, fmt.Errorf("update item: %w", err)
		}
		item = existing
	} else {
		item = &entity.Item{
			ID:          itemID,
			Works:       works,
			CoverImages: coverURLs,
			RawOCR:      snapshots,
		}
		if err := p.repo.InsertItem(ctx, item); err != nil {
			return nil, fmt.Errorf("insert item: %w", err)
		}
	}

	p.logger.Info("pipeline.submission.ok",
		"item_id", item.ID,
		"covers", len(sub.Covers),
		"ocr_payloads", len(payloads),
		"works", len(item.Works),
		"merged", existing != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return item, nil
}

// extractCover writes the image to a scratch file for the OCR chain and
// removes it afterwards; only the data URL and OCR payload survive.
func (p *Processor) extractCover(ctx context.Context, itemID uuid.UUID, cover CoverImage) ocr.Text {
	if err := os.MkdirAll(p.uploadDir, 0o755); err != nil {
		p.logger.Warn("pipeline.upload_dir_failed", "error", err)
		return ocr.NewText()
	}

	suffix := strings.ToLower(filepath.Ext(cover.Filename))
	if suffix == "" {
		suffix = ".jpg"
	}
	scratch := filepath.Join(p.uploadDir, fmt.Sprintf("%s_%s%s", itemID, uuid.New().String(), suffix))
	if err := os.WriteFile(scratch, cover.Data, 0o644); err != nil {
		p.logger.Warn("pipeline.scratch_write_failed", "error", err)
		return ocr.NewText()
	}
	defer func() {
		if err := os.Remove(scratch); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("pipeline.scratch_cleanup_failed", "path", scratch, "error", err)
		}
	}()

	return p.chain.Attempt(ctx, scratch)
}

func dataURL(cover CoverImage) string {
	mimeType := mime.TypeByExtension(filepath.Ext(cover.Filename))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(cover.Data)
}
