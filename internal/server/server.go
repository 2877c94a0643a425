// Package server provides the HTTP API for medcheck.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/carelane/medcheck/internal/analysis"
	"github.com/carelane/medcheck/internal/analytics"
	"github.com/carelane/medcheck/internal/config"
	"github.com/carelane/medcheck/internal/export"
	"github.com/carelane/medcheck/internal/extract"
	"github.com/carelane/medcheck/internal/storage"
	"github.com/carelane/medcheck/internal/upload"
)

// Server is the HTTP server for the medcheck API.
type Server struct {
	storage   storage.Storage
	analyzer  analysis.Analyzer
	validator *upload.Validator
	extractor *extract.Extractor
	exporter  *export.Service
	sink      analytics.Sink
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	store storage.Storage,
	analyzer analysis.Analyzer,
	validator *upload.Validator,
	extractor *extract.Extractor,
	exporter *export.Service,
	sink analytics.Sink,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		storage:   store,
		analyzer:  analyzer,
		validator: validator,
		extractor: extractor,
		exporter:  exporter,
		sink:      sink,
		config:    cfg,
		logger:    logger,
	}
}

// routes builds the router. Split out from Start so handler tests can
// exercise the full middleware chain.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/api/v1/analyze", s.handleAnalyze)
	r.Post("/api/v1/analyze/report.pdf", s.handleAnalysisPDF)
	r.Post("/api/v1/submissions", s.handleSubmit)
	r.Get("/api/v1/applications/export", s.handleExportApplications)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
