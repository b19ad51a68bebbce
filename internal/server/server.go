package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/mlfq/internal/config"
	"github.com/me/mlfq/internal/parser"
	"github.com/me/mlfq/internal/scheduler"
	"github.com/me/mlfq/internal/store"
)

// Server is the MLFQ simulator REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	parser    *parser.Parser
	validator *parser.Validator
	store     store.Store
	scheduler *scheduler.Scheduler
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		parser:    parser.New(logger),
		validator: parser.NewValidator(cfg.Limits, logger),
		store:     st,
		scheduler: scheduler.New(logger),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		// Discovery
		r.Get("/", s.handleDiscovery)

		// Health
		r.Get("/health", s.handleHealth)

		// Simulations
		r.Route("/simulations", func(r chi.Router) {
			r.Get("/", s.handleListSimulations)
			r.Post("/", s.handleCreateSimulation)
			r.Post("/validate", s.handleValidateSimulation)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSimulation)
				r.Delete("/", s.handleDeleteSimulation)
				r.Get("/gantt", s.handleGetGantt)
			})
		})
	})
}
