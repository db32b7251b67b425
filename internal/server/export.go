package server

import (
	"fmt"
	"net/http"
	"time"
)

// handleExport streams the whole catalog as an XLSX workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.exporter.ExportCollectionXLSX(r.Context())
	if err != nil {
		s.writeAppError(w, err)
		return
	}

	filename := fmt.Sprintf("catalog-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
