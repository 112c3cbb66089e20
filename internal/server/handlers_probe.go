package server

import (
	"net/http"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// handleProbe runs a single source adapter against the supplied reference
// and returns the settled result. Useful for checking a source before
// spending a full generation pass on it.
func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	kind := types.SourceKind(r.PathValue("kind"))
	adapter, ok := s.adapters[kind]
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "unknown source kind: "+string(kind))
		return
	}

	req, err := s.parseGenerateRequest(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Wants(kind) {
		s.errorResponse(w, http.StatusBadRequest, "request supplies no reference for "+string(kind))
		return
	}

	result := adapter.Extract(r.Context(), req)
	s.jsonResponse(w, http.StatusOK, result)
}
