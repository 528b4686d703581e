package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/siddhantborse/Alphaaudit-pro/internal/ai"
	"github.com/siddhantborse/Alphaaudit-pro/internal/analytics"
	"github.com/siddhantborse/Alphaaudit-pro/internal/api"
	"github.com/siddhantborse/Alphaaudit-pro/internal/catalog"
	"github.com/siddhantborse/Alphaaudit-pro/internal/config"
	"github.com/siddhantborse/Alphaaudit-pro/internal/engine"
	"github.com/siddhantborse/Alphaaudit-pro/internal/scoring"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Stores ────────────────────────────────────────────────────────────────
	// With DATABASE_URL the catalog and analytics live in postgres; without it
	// everything runs from the bundled in-memory seed, which is enough for
	// development and demos.
	var (
		catalogStore   catalog.Store
		analyticsStore analytics.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := openDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pool.Close()

		cs := catalog.NewPostgresStore(pool)
		if err := cs.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("catalog schema: %w", err)
		}
		as := analytics.NewPostgresStore(pool)
		if err := as.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("analytics schema: %w", err)
		}
		catalogStore, analyticsStore = cs, as
		logger.Info("database connected")
	} else {
		catalogStore = catalog.NewMemoryStore(catalog.SeedMappings())
		analyticsStore = analytics.NewMemoryStore()
		logger.Info("running with in-memory stores")
	}

	searcher, err := catalog.NewSearcher(catalogStore, cfg.SearchCacheSize)
	if err != nil {
		return fmt.Errorf("catalog searcher: %w", err)
	}

	// ── Advisor ───────────────────────────────────────────────────────────────
	// The local Ollama model is primary. Gemini is the fallback when
	// GEMINI_API_KEY is also set. Without either, scoring is purely rule-based.
	advisor, advisorModel, err := buildAdvisor(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("advisor: %w", err)
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	scoringCfg := scoring.DefaultConfig()
	scoringCfg.RevenuePerRAFPoint = cfg.RevenuePerRAFPoint
	scoringCfg.MaxSuggestions = cfg.MaxSuggestions
	if err := scoringCfg.Validate(); err != nil {
		return err
	}
	eng := engine.New(scoringCfg, searcher, advisor, cfg.AdvisorTimeout, logger)

	// ── Analytics recorder ────────────────────────────────────────────────────
	recorder := analytics.NewRecorder(analyticsStore, analytics.RecorderConfig{
		Workers:   cfg.RecorderWorkers,
		QueueSize: cfg.RecorderQueueSize,
	}, logger)

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(
		eng,
		catalogStore,
		analyticsStore,
		recorder, // *Recorder satisfies analytics.Sink
		api.Config{
			Env:          cfg.Env,
			AdvisorModel: advisorModel,
		},
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // generous — the advisory pass can be slow
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	// Recorder and HTTP server both respect the signal context.
	recorderDone := make(chan struct{})
	go func() {
		recorder.Start(ctx)
		close(recorderDone)
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight HTTP requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Recorder drains its queue before exiting.
	<-recorderDone
	logger.Info("shutdown complete")
	return nil
}

// buildAdvisor wires the advisory chain from config. The returned model name
// is what the health endpoint reports; empty means no advisor is configured.
func buildAdvisor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ai.Advisor, string, error) {
	var primary, secondary ai.Advisor

	if cfg.OllamaEnabled() {
		primary = ai.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel)
	}
	if cfg.GeminiEnabled() {
		g, err := ai.NewGeminiClient(ctx, cfg.GeminiModel)
		if err != nil {
			return nil, "", fmt.Errorf("gemini client: %w", err)
		}
		secondary = g
	}

	switch {
	case primary != nil && secondary != nil:
		logger.Info("advisor: using Ollama with Gemini fallback", "model", cfg.OllamaModel)
		return ai.NewFallbackAdvisor(primary, secondary, logger), cfg.OllamaModel, nil
	case primary != nil:
		logger.Info("advisor: using Ollama only", "model", cfg.OllamaModel)
		return primary, cfg.OllamaModel, nil
	case secondary != nil:
		logger.Info("advisor: using Gemini only", "model", cfg.GeminiModel)
		return secondary, cfg.GeminiModel, nil
	default:
		logger.Info("advisor: none configured, scoring is rule-based only")
		return ai.NoopAdvisor{}, "", nil
	}
}

// openDB opens the connection pool and verifies it is reachable before the
// server starts taking traffic.
func openDB(dsn string) (*sql.DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(5 * time.Minute)
	pool.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}
