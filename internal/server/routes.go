package server

import (
	"encoding/json"
	"net/http"

	"github.com/beatrove/catalog/internal/common"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/items", s.handleCreateItem)
	mux.HandleFunc("GET /api/v1/items", s.handleListItems)
	mux.HandleFunc("GET /api/v1/items/{id}", s.handleGetItem)
	mux.HandleFunc("DELETE /api/v1/items/{id}", s.handleDeleteItem)

	mux.HandleFunc("GET /api/v1/works/search", s.handleSearchWorks)
	mux.HandleFunc("GET /api/v1/export.xlsx", s.handleExport)
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// ErrorResponse is the JSON body for all error answers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeAppError maps a pipeline or repository error onto the HTTP status
// taxonomy and emits it.
func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	status := common.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("server.request_failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
