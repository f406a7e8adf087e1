package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/funpages/internal/api"
	"github.com/timmy/funpages/internal/config"
	"github.com/timmy/funpages/internal/logger"
	"github.com/timmy/funpages/internal/service"
	"github.com/timmy/funpages/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(nil)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	ctx := context.Background()

	// Initialize storage (local directory by default, or S3/R2)
	objectStorage, err := initStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}

	// Initialize services
	complimentService := service.NewComplimentService()
	animalService := service.NewAnimalService()
	imageFilterService := service.NewImageFilterService(objectStorage, &service.ImageFilterConfig{
		MaxDimension: cfg.Image.MaxDimension,
		MaxPixels:    cfg.Image.MaxPixels,
	})
	gifSearchService := service.NewGIFSearchService(&service.GIFSearchConfig{
		BaseURL:   cfg.Tenor.BaseURL,
		APIKey:    cfg.Tenor.APIKey,
		ClientKey: cfg.Tenor.ClientKey,
		Timeout:   cfg.Tenor.Timeout,
	})

	// Setup router
	router, err := api.SetupRouter(
		complimentService,
		animalService,
		imageFilterService,
		gifSearchService,
		cfg,
		appLogger,
	)
	if err != nil {
		logger.Fatal("Failed to set up router: %v", err)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port":         cfg.Server.Port,
			"mode":         cfg.Server.Mode,
			"storage_type": cfg.Storage.Type,
		}).Info("Starting web server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
		return
	}

	logger.Info("Server exited")
}

func initStorage(ctx context.Context, cfg *config.Config) (storage.ObjectStorage, error) {
	storageType := storage.StorageType(cfg.Storage.Type)
	if storageType == "" || storageType == storage.StorageTypeLocal {
		return storage.NewStorage(&storage.Config{
			Type:      storage.StorageTypeLocal,
			Dir:       cfg.ImagesDir(),
			URLPrefix: "/static/images",
		})
	}

	if cfg.Storage.PublicURL == "" && cfg.Storage.Endpoint != "" {
		logger.Warn("storage.public_url is empty; filtered images will be linked relative to this site")
	}

	s3Storage, err := storage.NewStorage(&storage.Config{
		Type: storageType,
		S3: storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			PublicURL: cfg.Storage.PublicURL,
			KeyPrefix: "images/",
		},
	})
	if err != nil {
		return nil, err
	}

	// Ensure bucket exists
	if ensurer, ok := s3Storage.(interface {
		EnsureBucket(context.Context) error
	}); ok {
		if err := ensurer.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
	}
	return s3Storage, nil
}
