package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/beatrove/catalog/constants"
	"github.com/beatrove/catalog/internal/entity"
	"github.com/beatrove/catalog/internal/pipeline"
)

// ItemListResponse wraps the item listing.
type ItemListResponse struct {
	Items []*entity.Item `json:"items"`
	Count int            `json:"count"`
}

// handleCreateItem accepts a multipart form with one or more "covers" file
// parts plus the catalog fields as plain form values, runs the resolution
// pipeline, and answers with the stored item. The optional "merge" flag
// folds the submission into a matching existing item instead of creating a
// new one.
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 64 << 20 // 64MB
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	var covers []pipeline.CoverImage
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["covers"] {
			src, err := fh.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to open uploaded file: %v", err))
				return
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read uploaded file: %v", err))
				return
			}
			covers = append(covers, pipeline.CoverImage{Filename: fh.Filename, Data: data})
		}
	}

	manual := make(map[string]string, len(constants.FieldNames))
	for _, name := range constants.FieldNames {
		if value := r.FormValue(name); value != "" {
			manual[name] = value
		}
	}

	item, err := s.processor.ProcessSubmission(r.Context(), pipeline.Submission{
		Manual: manual,
		Covers: covers,
		Merge:  r.FormValue("merge") == "true",
	})
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.ListItems(r.Context())
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	if items == nil {
		items = []*entity.Item{}
	}
	writeJSON(w, http.StatusOK, ItemListResponse{Items: items, Count: len(items)})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := s.repo.DeleteItem(r.Context(), id); err != nil {
		s.writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
