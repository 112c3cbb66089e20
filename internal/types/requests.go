package types

import (
	"github.com/go-playground/validator/v10"
)

// GenerateRequest is the JSON body accepted by the generation endpoints. A
// prior resume referenced by PriorResumeKey is fetched from object storage;
// multipart uploads bypass this type and attach bytes directly.
type GenerateRequest struct {
	ProfileURL     string `json:"profile_url,omitempty" validate:"omitempty,url"`
	PortfolioURL   string `json:"portfolio_url,omitempty" validate:"omitempty,url"`
	JobPosting     string `json:"job_posting,omitempty"`
	PriorResumeKey string `json:"prior_resume_key,omitempty"`
	Additions      string `json:"additions,omitempty"`
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// SourceRequest maps the API body onto the pipeline's source request.
func (r *GenerateRequest) SourceRequest() SourceRequest {
	return SourceRequest{
		ProfileURL:   r.ProfileURL,
		PortfolioURL: r.PortfolioURL,
		PostingText:  r.JobPosting,
		ResumeKey:    r.PriorResumeKey,
		Additions:    r.Additions,
	}
}

// FeedbackRequest carries revision guidance for a completed run. At least
// one of Notes or Additions must be non-empty; the bound context and the
// prior document come from the run, never from the caller.
type FeedbackRequest struct {
	Notes     string `json:"notes,omitempty" validate:"required_without=Additions"`
	Additions string `json:"additions,omitempty" validate:"required_without=Notes"`
}

// Validate validates the FeedbackRequest using the validator.
func (r *FeedbackRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
