// Package api implements the HTTP layer for the suggestion scoring service.
// Handlers are methods on *Server. Each handler file is responsible for one
// resource group and only imports the dependencies it actually uses.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/siddhantborse/Alphaaudit-pro/internal/analytics"
	"github.com/siddhantborse/Alphaaudit-pro/internal/catalog"
	"github.com/siddhantborse/Alphaaudit-pro/internal/engine"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// AdvisorModel names the model behind the advisory pass, for the health
	// endpoint. Empty when no advisor is configured.
	AdvisorModel string
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// engine runs the full analysis pipeline per request.
	engine *engine.Engine

	// catalog serves direct code lookups; searches go through the engine.
	catalog catalog.Store

	// analytics serves the daily summary reads.
	analytics analytics.Store

	// sink receives completed analyses for off-path recording.
	sink analytics.Sink

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(
	eng *engine.Engine,
	cat catalog.Store,
	stats analytics.Store,
	sink analytics.Sink,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	s := &Server{
		engine:    eng,
		catalog:   cat,
		analytics: stats,
		sink:      sink,
		cfg:       cfg,
		logger:    logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(120 * time.Second))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", s.handleHealthz)

	// ── API v1 ────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {

		// Analysis — the main entry point.
		r.Post("/analyze", s.handleAnalyze)

		// Catalog — direct mapping lookup by ICD-10 code.
		r.Get("/codes/{code}", s.handleGetCode)

		// Demo scenarios — canned inputs for manual testing.
		r.Get("/demo-scenarios", s.handleDemoScenarios)

		// Analytics — per-day usage aggregates.
		r.Get("/analytics/daily", s.handleDailyAnalytics)
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"advisor_available": s.cfg.AdvisorModel != "",
		"advisor_model":     s.cfg.AdvisorModel,
	})
}
