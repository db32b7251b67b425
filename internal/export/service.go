package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/beatrove/catalog/constants"
	"github.com/beatrove/catalog/internal/repository"
)

// Service is a tiny façade over the item repository that produces XLSX
// bytes for collection exports.
type Service struct {
	repo   repository.ItemRepository
	logger *slog.Logger
}

func NewService(repo repository.ItemRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

var exportHeaders = []string{
	"Item ID",
	"Work #",
	"Artist",
	"Record Name",
	"Composer",
	"Catalog Number",
	"Label",
	"Year",
	"Location",
	"Genre",
	"Key",
	"Composer Code",
	"Notes",
	"Covers",
	"Created",
}

// ExportCollectionXLSX returns an XLSX workbook (as bytes) with one row per
// work; multi-work items repeat the item columns on each row.
func (s *Service) ExportCollectionXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Collection"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet so the workbook opens on Collection
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	works := 0
	for _, item := range items {
		for _, work := range item.Works {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, v)
			}

			fields := work.FieldMap()
			write(1, item.ID.String())
			write(2, work.WorkIndex+1)
			write(3, fields[constants.FieldArtist])
			write(4, fields[constants.FieldRecordName])
			write(5, fields[constants.FieldComposer])
			write(6, fields[constants.FieldCatalogNumber])
			write(7, fields[constants.FieldLabel])
			write(8, fields[constants.FieldYear])
			write(9, fields[constants.FieldLocation])
			write(10, fields[constants.FieldGenre])
			write(11, fields[constants.FieldKeySignature])
			write(12, fields[constants.FieldComposerCode])
			write(13, fields[constants.FieldNotes])
			write(14, len(item.CoverImages))
			if !item.CreatedAt.IsZero() {
				write(15, item.CreatedAt.UTC().Format("2006-01-02"))
			}

			row++
			works++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	s.logger.Info("export.collection.ok",
		"items", len(items),
		"works", works,
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
