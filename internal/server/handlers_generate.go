package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/jonathan/resume-pipeline/internal/pipeline"
	"github.com/jonathan/resume-pipeline/internal/types"
)

// maxUploadBytes bounds multipart resume uploads.
const maxUploadBytes = 16 << 20

// GenerateResponse is the body returned by the generation endpoints. The
// frozen context stays retrievable under /runs/{id}/context.
type GenerateResponse struct {
	RunID    string                `json:"run_id"`
	State    string                `json:"state"`
	Version  int                   `json:"version"`
	Keywords []string              `json:"keywords,omitempty"`
	Document *types.ResumeDocument `json:"document"`
}

// handleGenerate runs a full generation pass and returns the document.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseGenerateRequest(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.orch.Generate(r.Context(), req, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, generateResponse(result))
}

// handleGenerateStream runs a generation pass and streams progress via SSE.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseGenerateRequest(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.orch.Generate(r.Context(), req, func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", event); err != nil {
			log.Printf("Error writing SSE event: %v", err)
		}
	})
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	sse.WriteComplete(generateResponse(result))
}

// handleFeedback runs one feedback cycle over a persisted run.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	runID, err := parseRunID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var fb types.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.orch.RefineRun(r.Context(), runID, fb, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, generateResponse(result))
}

func generateResponse(result *pipeline.RunResult) GenerateResponse {
	resp := GenerateResponse{
		RunID:    result.RunID.String(),
		State:    string(result.State),
		Version:  result.Version,
		Document: result.Document,
	}
	if result.Context != nil {
		resp.Keywords = result.Context.Keywords
	}
	return resp
}

// parseGenerateRequest accepts the JSON body or a multipart form carrying a
// resume upload.
func (s *Server) parseGenerateRequest(r *http.Request) (types.SourceRequest, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(contentType, "multipart/") {
		return s.parseMultipartRequest(r)
	}

	var body types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return types.SourceRequest{}, fmt.Errorf("invalid request body: %w", err)
	}
	if err := body.Validate(); err != nil {
		return types.SourceRequest{}, fmt.Errorf("invalid request: %w", err)
	}
	return body.SourceRequest(), nil
}

func (s *Server) parseMultipartRequest(r *http.Request) (types.SourceRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return types.SourceRequest{}, fmt.Errorf("parsing multipart form: %w", err)
	}

	body := types.GenerateRequest{
		ProfileURL:     r.FormValue("profile_url"),
		PortfolioURL:   r.FormValue("portfolio_url"),
		JobPosting:     r.FormValue("job_posting"),
		PriorResumeKey: r.FormValue("prior_resume_key"),
		Additions:      r.FormValue("additions"),
	}
	if err := body.Validate(); err != nil {
		return types.SourceRequest{}, fmt.Errorf("invalid request: %w", err)
	}
	req := body.SourceRequest()

	file, header, err := r.FormFile("prior_resume")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, nil
	case err != nil:
		return types.SourceRequest{}, fmt.Errorf("reading resume upload: %w", err)
	}
	defer file.Close()

	if req.ResumeKey != "" {
		return types.SourceRequest{}, fmt.Errorf("supply prior_resume or prior_resume_key, not both")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return types.SourceRequest{}, fmt.Errorf("reading resume upload: %w", err)
	}
	req.ResumeData = data
	req.ResumeFilename = header.Filename
	return req, nil
}
