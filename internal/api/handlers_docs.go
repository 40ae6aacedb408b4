package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleDeleteDocument removes a document's fragments from the similarity
// store. Stored artifacts are left in place; they are keyed by doc id and
// harmless without fragments.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.vs.DeleteSource(r.Context(), docID); err != nil {
		jsonError(w, "delete failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"doc_id": docID,
		"status": "deleted",
	})
}
