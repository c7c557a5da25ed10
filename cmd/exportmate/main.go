package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/exportmate/exportmate/internal/advisory"
	"github.com/exportmate/exportmate/internal/api"
	"github.com/exportmate/exportmate/internal/config"
	"github.com/exportmate/exportmate/internal/domain"
	"github.com/exportmate/exportmate/internal/repository"
	"github.com/exportmate/exportmate/internal/service"
	"github.com/exportmate/exportmate/internal/store"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	webDir     = flag.String("web", "./web", "Path to the web UI build directory")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database (archived session history)
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	sessionRepo := repository.NewSessionRepository(db)

	// Session store with a fresh working session; archived history is
	// restored from the repository.
	sessionStore := store.NewSessionStore(store.Options{
		Greeting:     cfg.Chat.Greeting,
		DefaultTitle: cfg.Chat.DefaultTitle,
		Sink:         sessionRepo,
		Logger:       logger,
	})
	archived, err := sessionRepo.List()
	if err != nil {
		logger.Warn("Failed to load session history", zap.Error(err))
	} else {
		sessionStore.Restore(archived)
		logger.Info("Restored session history", zap.Int("sessions", len(archived)))
	}

	// Advisory service client
	client := advisory.NewHTTPClient(advisory.Config{
		BaseURL:     cfg.Advisory.BaseURL,
		ChatPath:    cfg.Advisory.ChatPath,
		PredictPath: cfg.Advisory.PredictPath,
		Timeout:     cfg.Advisory.Timeout(),
	})

	// Initialize services
	conversation := service.NewConversationService(
		sessionStore,
		client,
		domain.PredictionDefaults{
			Stock:    cfg.Predict.DefaultStock,
			Platform: cfg.Predict.DefaultPlatform,
		},
		logger,
	)
	uiService := service.NewUIService(cfg)

	// Setup router
	router := api.SetupRouter(conversation, uiService, sessionStore, api.RouterConfig{
		APIKey:       cfg.Admin.APIKey,
		AllowOrigins: []string{"*"},
		WebDir:       *webDir,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting exportmate server",
			zap.String("address", cfg.Address()),
			zap.String("advisory_service", cfg.Advisory.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
