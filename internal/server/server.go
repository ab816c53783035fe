package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/modlens/modlens/internal/history"
	"github.com/modlens/modlens/internal/moderation"
	"github.com/modlens/modlens/internal/policy"
	"github.com/modlens/modlens/internal/retrieval"
)

// DefaultRequestTimeout bounds a single request, including every LLM call of
// an analysis.
const DefaultRequestTimeout = 120 * time.Second

// Config holds server configuration.
type Config struct {
	Port           int
	AllowAll       bool // allow all CORS origins (dev mode)
	RequestTimeout time.Duration
}

// Analyzer runs the analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*moderation.DetailedAnalyzeResponse, error)
}

// PolicyAdder stores a single policy.
type PolicyAdder interface {
	Add(ctx context.Context, req policy.AddRequest) (string, error)
}

// Deps are the collaborators behind the HTTP routes. History is optional.
type Deps struct {
	Analyzer Analyzer
	Policies PolicyAdder
	Search   retrieval.SimilaritySource
	History  *history.Store
	Logger   *slog.Logger
}

// Server is the moderation HTTP API.
type Server struct {
	cfg        Config
	deps       Deps
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server and builds its routes.
func New(cfg Config, deps Deps) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, deps: deps, logger: logger}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/analyze", s.handleAnalyze)
	r.Post("/api/v1/analyze", s.handleAnalyze)

	r.Route("/policy", func(r chi.Router) {
		r.Post("/add", s.handleAddPolicy)
		r.Get("/search", s.handleSearch)
	})

	if s.deps.History != nil {
		history.RegisterRoutes(r, s.deps.History)
	}
	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("modlens server listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
