package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonathan/resume-pipeline/internal/db"
	"github.com/jonathan/resume-pipeline/internal/pipeline"
	"github.com/jonathan/resume-pipeline/internal/synthesis"
)

// ErrInvalidCredentials indicates a failed service-account login.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

// HTTPStatus maps pipeline errors onto response codes: invalid input is the
// caller's fault, a missing run is 404, a synthesis failure is a valid
// request the model could not serve, and a deadline is a timeout.
func HTTPStatus(err error) int {
	var inputErr *pipeline.InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest
	}
	if errors.Is(err, db.ErrNotFound) {
		return http.StatusNotFound
	}
	// A deadline anywhere in the chain outranks the synthesis wrapper: a
	// model call that ran out of time is a timeout, not a bad document.
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	var synthErr *synthesis.SynthesisError
	if errors.As(err, &synthErr) {
		return http.StatusUnprocessableEntity
	}
	var credErr *ErrInvalidCredentials
	if errors.As(err, &credErr) {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
