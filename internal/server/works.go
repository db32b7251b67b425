package server

import (
	"net/http"

	"github.com/beatrove/catalog/internal/entity"
	"github.com/beatrove/catalog/internal/repository"
)

// WorkSearchResponse answers a work identity lookup. Match is null when
// nothing in the catalog fits the given clues.
type WorkSearchResponse struct {
	Match *entity.Work `json:"match"`
}

// handleSearchWorks resolves a work against the catalog from whichever of
// artist, record_name, and catalog_number the caller provides.
func (s *Server) handleSearchWorks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := repository.MatchCriteria{
		Artist:        q.Get("artist"),
		RecordName:    q.Get("record_name"),
		CatalogNumber: q.Get("catalog_number"),
	}
	// no identifying field means no match, same as the resolver itself
	if criteria.Empty() {
		writeJSON(w, http.StatusOK, WorkSearchResponse{})
		return
	}

	match, err := s.repo.FindMatchingWork(r.Context(), criteria)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WorkSearchResponse{Match: match})
}
