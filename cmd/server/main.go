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

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/scoring-service/internal/cache"
	"github.com/SAP-F-2025/scoring-service/internal/config"
	"github.com/SAP-F-2025/scoring-service/internal/handlers"
	"github.com/SAP-F-2025/scoring-service/internal/registry"
	"github.com/SAP-F-2025/scoring-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/scoring-service/internal/services"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
	"github.com/SAP-F-2025/scoring-service/internal/validator"
	"github.com/SAP-F-2025/scoring-service/pkg"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := utils.NewSlog(cfg.Environment, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := validator.New()

	reg, err := loadRegistry(cfg, v)
	if err != nil {
		return err
	}
	logger.Info("Scale registry loaded", "scales", len(reg.Scales()), "source", cfg.ScalesFile)

	engine := services.NewScoringEngine(reg, services.NewFormatDetector(), logger, cfg.ScoringWorkers)
	exporter := services.NewExportService(logger)

	var sessionService services.SessionService
	if cfg.DatabaseURL != "" {
		sessionService, err = buildSessionService(ctx, cfg, logger, v, engine, exporter)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("DATABASE_URL not set, session routes disabled")
	}

	serviceManager := services.NewServiceManager(engine, sessionService, exporter)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	appLogger := utils.NewSlogLogger(logger)

	router := gin.New()
	router.Use(utils.ContextLogger(appLogger))
	router.Use(utils.LoggerMiddleware(appLogger))
	router.Use(gin.Recovery())

	auth := handlers.DevUserMiddleware()
	if cfg.Auth.Enabled {
		auth = handlers.AuthMiddleware(handlers.NewCasdoorTokenParser(cfg.Auth))
	}

	handlers.NewHandlerManager(serviceManager, v, appLogger).SetupRoutes(router, auth)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadRegistry(cfg *config.Config, v *validator.Validator) (*registry.Registry, error) {
	if cfg.ScalesFile != "" {
		return registry.LoadFile(cfg.ScalesFile, v)
	}
	return registry.LoadBuiltin(v)
}

func buildSessionService(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	v *validator.Validator,
	engine services.ScoringService,
	exporter *services.ExportService,
) (services.SessionService, error) {
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := pkg.Migrate(db); err != nil {
		return nil, err
	}

	var sessionCache cache.CacheService
	if cfg.RedisURL != "" {
		client, err := pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Warn("Redis unavailable, session cache disabled", "error", err)
		} else {
			sessionCache = cache.NewRedisCache(client, logger)
		}
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return nil, err
	}

	serviceLogger := services.NewServiceLogger(logger, services.LogConfig{
		Service:     "scoring-service",
		Component:   "sessions",
		EnableDebug: !cfg.IsProduction(),
	})

	return services.NewSessionService(services.SessionServiceConfig{
		Repo:      postgres.NewRepository(db),
		Scoring:   engine,
		Exporter:  exporter,
		Cache:     sessionCache,
		Publisher: publisher,
		Logger:    serviceLogger,
		Validator: v,
		CacheTTL:  cfg.CacheTTL,
	}), nil
}
