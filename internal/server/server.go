// Package server provides the HTTP REST API for the resume pipeline.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-pipeline/internal/config"
	"github.com/jonathan/resume-pipeline/internal/db"
	"github.com/jonathan/resume-pipeline/internal/pipeline"
	"github.com/jonathan/resume-pipeline/internal/server/middleware"
	"github.com/jonathan/resume-pipeline/internal/server/ratelimit"
	"github.com/jonathan/resume-pipeline/internal/sources"
	"github.com/jonathan/resume-pipeline/internal/types"
)

// Store is the persistence surface the read endpoints need. Both db.Store
// and db.MemoryStore satisfy it.
type Store interface {
	GetRun(ctx context.Context, id uuid.UUID) (*types.Run, error)
	ListRuns(ctx context.Context, filters db.RunFilters) ([]types.Run, error)
	DeleteRun(ctx context.Context, id uuid.UUID) error
	GetContext(ctx context.Context, runID uuid.UUID) (*types.SharedContext, error)
	GetDocument(ctx context.Context, runID uuid.UUID, version int) (*types.ResumeDocument, error)
	GetLatestDocument(ctx context.Context, runID uuid.UUID) (*types.ResumeDocument, int, error)
	ListDocuments(ctx context.Context, runID uuid.UUID) ([]db.DocumentInfo, error)
}

// Config holds server configuration.
type Config struct {
	Addr         string
	Orchestrator *pipeline.Orchestrator
	Store        Store
	// Adapters backs the probe endpoints; missing kinds probe as failed.
	Adapters []sources.Adapter
	// Auth enables the token endpoint and the Bearer gate on mutating
	// routes. Nil runs the API open.
	Auth *config.AuthConfig
}

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	orch        *pipeline.Orchestrator
	store       Store
	adapters    map[types.SourceKind]sources.Adapter
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	auth        *config.AuthConfig
}

// New creates a new server instance.
func New(cfg Config) (*Server, error) {
	if cfg.Orchestrator == nil {
		return nil, fmt.Errorf("server requires an orchestrator")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("server requires a store")
	}

	s := &Server{
		orch:     cfg.Orchestrator,
		store:    cfg.Store,
		adapters: make(map[types.SourceKind]sources.Adapter),
		auth:     cfg.Auth,
	}
	for _, adapter := range cfg.Adapters {
		s.adapters[adapter.Kind()] = adapter
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	if cfg.Auth != nil {
		s.jwtService = NewJWTService(cfg.Auth.JWT)
	}

	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Generation holds the connection open
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler builds the routed and middleware-wrapped handler. Exposed so tests
// can drive the server through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Generation and feedback
	mux.Handle("POST /generate", s.requireAuth(http.HandlerFunc(s.handleGenerate)))
	mux.Handle("POST /generate/stream", s.requireAuth(http.HandlerFunc(s.handleGenerateStream)))
	mux.Handle("POST /runs/{id}/feedback", s.requireAuth(http.HandlerFunc(s.handleFeedback)))

	// Run inspection
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /runs/{id}/context", s.handleGetContext)
	mux.HandleFunc("GET /runs/{id}/document", s.handleGetDocument)
	mux.HandleFunc("GET /runs/{id}/documents", s.handleListDocuments)
	mux.Handle("DELETE /runs/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteRun)))

	// Single-adapter probes
	mux.Handle("POST /probe/{kind}", s.requireAuth(http.HandlerFunc(s.handleProbe)))

	// Auth and health
	mux.HandleFunc("POST /auth/token", s.handleToken)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.withRecovery(s.withRateLimit(s.withLogging(s.withCORS(mux))))
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	log.Println("Server stopped")
	return nil
}

// requireAuth gates a route behind the Bearer token when auth is configured.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	if s.auth == nil {
		return next
	}
	return middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(next)
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRecovery converts handler panics into 500s instead of dropped
// connections.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[%s] %s panicked: %v", r.Method, r.URL.Path, rec)
				s.errorResponse(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
// In the future, this could use X-Forwarded-For header (only from trusted proxies).
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit
// information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
