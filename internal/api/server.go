package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mwestergaard/slrpipe/internal/artifacts"
	"github.com/mwestergaard/slrpipe/internal/config"
	"github.com/mwestergaard/slrpipe/internal/evidence"
	"github.com/mwestergaard/slrpipe/internal/llm"
	"github.com/mwestergaard/slrpipe/internal/pipeline"
	"github.com/mwestergaard/slrpipe/internal/vectorstore"
)

// Server is the HTTP API for the review pipeline.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	tf           *llm.Client
	vs           *vectorstore.Client
	art          *artifacts.Client
	evidence     *evidence.Builder
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, tf *llm.Client, vs *vectorstore.Client, art *artifacts.Client, eb *evidence.Builder, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		tf:           tf,
		vs:           vs,
		art:          art,
		evidence:     eb,
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

		r.Post("/api/documents", s.handleIngest)
		r.Post("/api/documents/batch", s.handleBatchIngest)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Get("/api/documents/{docID}/summary", s.handleGetSummary)
		r.Get("/api/documents/{docID}/screening", s.handleGetScreening)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)

		r.Post("/api/screening", s.handleScreening)
		r.Post("/api/evidence", s.handleEvidence)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
