package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/resume-pipeline/internal/db"
)

// RunResponse is the wire shape of a stored run.
type RunResponse struct {
	RunID         string   `json:"run_id"`
	Status        string   `json:"status"`
	Error         string   `json:"error,omitempty"`
	Requested     []string `json:"requested"`
	LatestVersion int      `json:"latest_version"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func parseRunID(r *http.Request) (uuid.UUID, error) {
	idStr := r.PathValue("id")
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("run ID is required")
	}
	runID, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid run ID format")
	}
	return runID, nil
}

// handleGetRun returns the status of a run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := parseRunID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	requested := make([]string, 0, len(run.Requested))
	for _, kind := range run.Requested {
		requested = append(requested, string(kind))
	}

	s.jsonResponse(w, http.StatusOK, RunResponse{
		RunID:         run.ID.String(),
		Status:        run.Status,
		Error:         run.Error,
		Requested:     requested,
		LatestVersion: run.LatestVersion,
		CreatedAt:     run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     run.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// handleListRuns returns recent runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filters := db.RunFilters{
		Status: r.URL.Query().Get("status"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filters.Limit = limit
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			s.errorResponse(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filters.Offset = offset
	}

	runs, err := s.store.ListRuns(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleDeleteRun removes a run with its context and documents.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID, err := parseRunID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteRun(r.Context(), runID); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetContext returns the frozen evidence snapshot of a run.
func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	runID, err := parseRunID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sc, err := s.store.GetContext(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, sc)
}

// handleGetDocument returns one document version, the latest by default.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	runID, err := parseRunID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	versionStr := r.URL.Query().Get("version")
	if versionStr == "" {
		doc, version, err := s.store.GetLatestDocument(r.Context(), runID)
		if err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"version":  version,
			"document": doc,
		})
		return
	}

	version, err := strconv.Atoi(versionStr)
	if err != nil || version < 1 {
		s.errorResponse(w, http.StatusBadRequest, "version must be a positive integer")
		return
	}

	doc, err := s.store.GetDocument(r.Context(), runID, version)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"version":  version,
		"document": doc,
	})
}

// handleListDocuments returns the version history of a run.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	runID, err := parseRunID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	docs, err := s.store.ListDocuments(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run_id":    runID.String(),
		"documents": docs,
		"count":     len(docs),
	})
}
