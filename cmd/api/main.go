package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/octobees/geosearch/internal/app"
	"github.com/octobees/geosearch/internal/auth"
	"github.com/octobees/geosearch/internal/config"
	"github.com/octobees/geosearch/internal/database"
	"github.com/octobees/geosearch/internal/handler"
	"github.com/octobees/geosearch/internal/logging"
	"github.com/octobees/geosearch/internal/metrics"
	middlewarepkg "github.com/octobees/geosearch/internal/middleware"
	"github.com/octobees/geosearch/internal/repository"
	"github.com/octobees/geosearch/internal/router"
	"github.com/octobees/geosearch/internal/service"
	"github.com/octobees/geosearch/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	m := metrics.New()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var opts []service.OrchestratorOption
	var placesHandler *handler.PlacesHandler
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}

		catalog := service.NewCatalogService(repository.NewPGXPlacesRepository(pool), cfg.PhoneRegion)
		opts = append(opts, service.WithCatalog(catalog))
		placesHandler = handler.NewPlacesHandler(catalog, logger)
	} else {
		logger.Info("DATABASE_URL not set, place catalogue disabled")
	}

	orchestrator, err := app.NewOrchestrator(ctx, cfg, logger, m, opts...)
	if err != nil {
		logger.Error("failed to build search pipeline", "error", err)
		os.Exit(1)
	}

	store, err := session.NewStore(cfg.SessionCapacity)
	if err != nil {
		logger.Error("failed to create session store", "error", err)
		os.Exit(1)
	}
	tokens := auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL)

	renderer, err := handler.NewTemplateRenderer()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, middlewarepkg.Session(tokens, store, cfg.SecureCookies, logger), m, router.Handlers{
		Page:   handler.NewPageHandler(orchestrator, logger),
		Search: handler.NewSearchHandler(orchestrator, logger),
		Places: placesHandler,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.Port, "llm_provider", cfg.LLMProvider, "llm_model", cfg.LLMModel)
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
