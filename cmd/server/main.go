package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/hhbot/vectorstore/internal/config"
	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"codeberg.org/hhbot/vectorstore/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	initTimeout     = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	logger.SetDefault(logger.New(cfg.Environment, os.Getenv("LOG_LEVEL")))
	logger.Info("starting vector store server",
		"backend", cfg.StoreBackend,
		"table", cfg.TableName,
		"model", cfg.EmbeddingModel,
		"dimensions", cfg.EmbeddingDimensions,
	)

	srv, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// listen first so /health can answer 503 while the table is prepared
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	initCtx, initCancel := context.WithTimeout(context.Background(), initTimeout)
	go func() {
		defer initCancel()

		if err := srv.services.Initialize(initCtx); err != nil {
			if apperrors.IsSchema(err) {
				logger.Fatal("content table does not match the expected schema", "error", err)
			}

			logger.Fatal("failed to initialize services", "error", err)
		}

		logger.Info("vector store ready", "table", srv.services.Store.TableName())
	}()

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	initCancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	srv.services.Close()

	logger.Info("server stopped")
}

// creates a server with all dependencies wired but not yet initialized
func NewServer(cfg *config.Config) (*Server, error) {
	services, err := InitializeServices(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if services.Redis != nil {
		redisClient = services.Redis.Client()
	}

	limit, err := RateLimitMiddleware(cfg.RateLimit, redisClient)
	if err != nil {
		services.Close()
		return nil, err
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		config:   cfg,
		services: services,
		router:   gin.New(),
	}

	RegisterRoutes(srv.router, srv, limit)

	return srv, nil
}
