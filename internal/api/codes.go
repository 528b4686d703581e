package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/siddhantborse/Alphaaudit-pro/internal/catalog"
)

// handleGetCode returns the mapping for a single ICD-10 code.
// GET /api/codes/{code}
func (s *Server) handleGetCode(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		respondErr(w, http.StatusBadRequest, "code is required")
		return
	}

	mapping, err := s.catalog.Lookup(r.Context(), code)
	if err != nil {
		if errors.Is(err, catalog.ErrCodeNotFound) {
			respondErr(w, http.StatusNotFound, "unknown ICD-10 code: "+code)
			return
		}
		s.respondInternalErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, mapping)
}
