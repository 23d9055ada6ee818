package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flashdeck/flashdeck-backend/internal/adapter/postgres"
	"github.com/flashdeck/flashdeck-backend/internal/adapter/postgres/flashcard"
	"github.com/flashdeck/flashdeck-backend/internal/adapter/postgres/progress"
	"github.com/flashdeck/flashdeck-backend/internal/adapter/postgres/reviewlog"
	"github.com/flashdeck/flashdeck-backend/internal/adapter/postgres/session"
	"github.com/flashdeck/flashdeck-backend/internal/config"
	"github.com/flashdeck/flashdeck-backend/internal/service/study"
	"github.com/flashdeck/flashdeck-backend/internal/transport/middleware"
	"github.com/flashdeck/flashdeck-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, initializes
// the logger and database pool, wires the repositories and the study
// service, and serves HTTP until the context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	cardRepo := flashcard.New(pool)
	progressRepo := progress.New(pool)
	reviewRepo := reviewlog.New(pool)
	sessionRepo := session.New(pool)
	txManager := postgres.NewTxManager(pool)

	studySvc, err := study.NewService(
		logger, cardRepo, progressRepo, reviewRepo, sessionRepo, txManager,
		cfg.SRS.ToDomain(),
	)
	if err != nil {
		return fmt.Errorf("create study service: %w", err)
	}

	healthHandler := rest.NewHealthHandler(pool, BuildVersion())
	studyHandler := rest.NewStudyHandler(studySvc, logger)
	catalogHandler := rest.NewCatalogHandler(cardRepo, logger)

	rateLimiter := middleware.NewRateLimiter(time.Minute)
	defer rateLimiter.Stop()

	handler := buildHandler(cfg, logger, rateLimiter, healthHandler, studyHandler, catalogHandler)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// buildHandler assembles the route table and the middleware chain.
func buildHandler(
	cfg *config.Config,
	logger *slog.Logger,
	rateLimiter *middleware.RateLimiter,
	health *rest.HealthHandler,
	studyHandler *rest.StudyHandler,
	catalog *rest.CatalogHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	mux.HandleFunc("GET /api/v1/cards", catalog.List)
	mux.HandleFunc("GET /api/v1/cards/{id}", catalog.Get)

	mux.HandleFunc("GET /api/v1/study/queue", studyHandler.Queue)
	mux.HandleFunc("POST /api/v1/study/review", studyHandler.Review)
	mux.HandleFunc("POST /api/v1/study/skip", studyHandler.Skip)
	mux.HandleFunc("GET /api/v1/study/dashboard", studyHandler.Dashboard)
	mux.HandleFunc("GET /api/v1/study/recommend", studyHandler.Recommend)
	mux.HandleFunc("GET /api/v1/study/adaptive", studyHandler.AdaptiveQueue)

	mux.HandleFunc("POST /api/v1/study/sessions", studyHandler.StartSession)
	mux.HandleFunc("GET /api/v1/study/sessions", studyHandler.SessionHistory)
	mux.HandleFunc("GET /api/v1/study/sessions/active", studyHandler.ActiveSession)
	mux.HandleFunc("POST /api/v1/study/sessions/finish", studyHandler.FinishSession)
	mux.HandleFunc("POST /api/v1/study/sessions/abandon", studyHandler.AbandonSession)

	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		rateLimiter.Limit(cfg.Server.RateLimitPerMin),
		middleware.Identity(cfg.Identity.UserHeader),
	)

	return chain(mux)
}
