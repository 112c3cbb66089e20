package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// TokenRequest is the body for the service-account login endpoint.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries the issued Bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleToken issues a JWT for the configured service account. With auth
// disabled the endpoint reports that no token is needed.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		s.errorResponse(w, http.StatusNotFound, "authentication is not configured")
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		s.errorResponse(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if !s.auth.Verify(req.Username, req.Password) {
		err := &ErrInvalidCredentials{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	token, err := s.jwtService.GenerateToken(req.Username)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	s.jsonResponse(w, http.StatusOK, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: time.Now().Add(s.auth.JWT.TokenTTL()),
	})
}
