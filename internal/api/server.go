package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MileWhile/Auramax/internal/config"
	"github.com/MileWhile/Auramax/internal/llm"
	"github.com/MileWhile/Auramax/internal/pipeline"
	"github.com/MileWhile/Auramax/internal/session"
)

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	pipeline *pipeline.Pipeline
	provider *llm.Client
	store    session.Store
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(p *pipeline.Pipeline, provider *llm.Client, store session.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		pipeline: p,
		provider: provider,
		store:    store,
		log:      log,
		cfg:      cfg,
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

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Post("/upload", s.handleUpload)
		r.Get("/sessions/{sessionID}/history", s.handleSessionHistory)
		r.Get("/stats/llm", s.handleLLMStats)
	})

	s.router = r
}
