package main

import (
	"context"
	"fmt"

	"codeberg.org/hhbot/vectorstore/internal/config"
	"codeberg.org/hhbot/vectorstore/internal/embedder"
	"codeberg.org/hhbot/vectorstore/internal/ingestion"
	"codeberg.org/hhbot/vectorstore/internal/logger"
	"codeberg.org/hhbot/vectorstore/internal/search"
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
)

// creates and configures all service clients. Nothing here talks to the
// embedding provider or touches the table; that happens in Initialize
func InitializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	store, err := vectorstore.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var opts []embedder.Option

	var redisCache *embedder.RedisCache
	if cfg.RedisURL != "" {
		redisCache, err = embedder.NewRedisCacheFromURL(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialize redis cache: %w", err)
		}

		opts = append(opts, embedder.WithSharedCache(redisCache))
		logger.Info("shared embedding cache enabled", "ttl", cfg.CacheTTL.String())
	}

	client := embedder.New(embedder.ConfigFrom(cfg), opts...)

	return &Services{
		Store:    store,
		Embedder: client,
		Search:   search.New(client, store, cfg.SearchThreshold),
		Pipeline: ingestion.New(client, store, ingestion.Options{IngestKeyframes: true}),
		Redis:    redisCache,
	}, nil
}

// prepares the embedding client and the content table. Both must succeed
// before the service reports healthy
func (s *Services) Initialize(ctx context.Context) error {
	if err := s.Embedder.Initialize(ctx); err != nil {
		return err
	}

	if err := s.Store.EnsureTable(ctx); err != nil {
		return fmt.Errorf("failed to prepare table %s: %w", s.Store.TableName(), err)
	}

	return nil
}

// true once both the embedding client and the table are usable
func (s *Services) Ready() bool {
	return s.Embedder.Ready() && s.Store.Ready()
}

// releases the store and the redis connection
func (s *Services) Close() {
	if s.Redis != nil {
		s.Redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	s.Store.Close()
}
