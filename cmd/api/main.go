package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"automind-api/internal/access"
	"automind-api/internal/assistant"
	"automind-api/internal/cache"
	"automind-api/internal/config"
	"automind-api/internal/handler"
	"automind-api/internal/middleware"
	"automind-api/internal/predictor"
	"automind-api/internal/repository"
	"automind-api/internal/router"
	"automind-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()

	logger := newLogger(&cfg.App)
	defer logger.Sync()

	logger.Info("starting automind api",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
	fmt.Println("Goodbye!")
}

func newLogger(app *config.AppConfig) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if app.Debug || app.LogLevel == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		zcfg := zap.NewProductionConfig()
		if level, lerr := zap.ParseAtomicLevel(app.LogLevel); lerr == nil {
			zcfg.Level = level
		}
		logger, err = zcfg.Build()
	}
	if err != nil {
		panic(err)
	}
	return logger.With(zap.String("service", app.Name))
}

func run(cfg *config.Config, logger *zap.Logger) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Persistent store
	dialect, err := repository.DialectFor(cfg.Store.Type)
	if err != nil {
		return err
	}
	dsn, err := cfg.Store.DSN()
	if err != nil {
		return err
	}
	if dialect.Name == repository.SQLiteDialect.Name {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		dsn = repository.SQLiteDSN(dsn)
	}

	store, err := repository.NewSQLStore(startCtx, dialect, dsn, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	// Session cache
	var sessionCache cache.Cache
	if cfg.Cache.UsesRedis() {
		redisCache, err := cache.NewRedisCache(startCtx, cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.RedisPrefix,
		})
		if err != nil {
			return err
		}
		sessionCache = redisCache
		logger.Info("redis session cache initialized", zap.String("addr", cfg.Cache.RedisAddress()))
	} else {
		sessionCache = cache.NewMemoryCache(cfg.Cache.CleanupInterval)
		logger.Info("memory session cache initialized")
	}
	defer sessionCache.Close()

	verifier, err := access.NewCredentialVerifier(cfg.Session.CredentialScheme)
	if err != nil {
		return err
	}

	// Collaborators
	catalog, err := predictor.LoadCatalog(cfg.Predictor.DatasetPath)
	if err != nil {
		logger.Warn("dataset not loaded, catalog is empty", zap.String("path", cfg.Predictor.DatasetPath), zap.Error(err))
		catalog = predictor.EmptyCatalog()
	}
	predictorClient := predictor.NewClient(cfg.Predictor.URL, cfg.Predictor.Timeout, logger)
	if !predictorClient.IsEnabled() {
		logger.Warn("PREDICTOR_URL not configured, price prediction is unavailable")
	}

	var chatAssistant assistant.Assistant
	gemini, err := assistant.NewGeminiClient(startCtx, cfg.Assistant.APIKey, cfg.Assistant.Model)
	switch {
	case err == nil:
		defer gemini.Close()
		chatAssistant = withTimeout{gemini, cfg.Assistant.Timeout}
		logger.Info("assistant configured", zap.String("model", cfg.Assistant.Model))
	case errors.Is(err, assistant.ErrNotConfigured):
		logger.Warn("AK not configured, chatbot is unavailable")
	default:
		logger.Warn("assistant initialization failed", zap.Error(err))
	}

	// Services
	sessions := service.NewSessionService(sessionCache, cfg.Session.TTL, logger)
	guard := access.NewGuard(sessions, store, logger)

	accountService := service.NewAccountService(store, verifier, logger)
	messagingService := service.NewMessagingService(store, store, logger)
	listingService := service.NewListingService(store, logger)
	requestService := service.NewRequestService(store, logger)
	predictionService := service.NewPredictionService(predictorClient, catalog, logger)
	assistantService := service.NewAssistantService(chatAssistant, logger)

	// Handlers
	r := router.New(router.Config{
		Logger:          logger,
		Handler:         handler.New(cfg.App.Name, cfg.App.Version, store),
		AdminHandler:    handler.NewAdminHandler(store, sessions, dialect.Name, cfg.Cache.Type, cfg.App.LoginKey),
		AuthHandler:     handler.NewAuthHandler(accountService, sessions, logger),
		MessageHandler:  handler.NewMessageHandler(messagingService),
		ListingHandler:  handler.NewListingHandler(listingService),
		RequestHandler:  handler.NewRequestHandler(requestService),
		EstimateHandler: handler.NewEstimateHandler(predictionService, assistantService),
		AuthMiddleware:  middleware.NewAuthMiddleware(middleware.AuthConfig{Guard: guard}),
		AllowedOrigins:  cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Address()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
	return nil
}

// withTimeout bounds every assistant call.
type withTimeout struct {
	assistant.Assistant
	timeout time.Duration
}

func (a withTimeout) Generate(ctx context.Context, prompt string) (string, error) {
	if a.timeout <= 0 {
		return a.Assistant.Generate(ctx, prompt)
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.Assistant.Generate(ctx, prompt)
}
