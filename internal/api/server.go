// Package api exposes the HTTP surface: document upload, job polling,
// report retrieval, and service stats.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/fnstitch/internal/config"
	"github.com/dgallion1/fnstitch/internal/pipeline"
	"github.com/dgallion1/fnstitch/internal/rewrite"
)

// Server is the HTTP API server for fnstitch.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	llmStats     *rewrite.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, llmStats *rewrite.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		llmStats:     llmStats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/enrich", s.handleEnrich)
		r.Post("/api/enrich/batch", s.handleBatchEnrich)
		r.Get("/api/enrich/{jobID}/status", s.handleEnrichStatus)
		r.Get("/api/enrich/{jobID}/report", s.handleEnrichReport)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
