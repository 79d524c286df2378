package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort                = "8080"
	defaultTableName           = "content_embeddings"
	defaultEmbeddingModel      = "text-embedding-3-small"
	defaultEmbeddingDimensions = 1536
	defaultCacheSize           = 1000
	defaultCacheTTL            = 24 * time.Hour
	defaultBatchSize           = 100
	defaultBatchDelay          = 100 * time.Millisecond
	defaultMaxRetries          = 3
	defaultRetryBaseDelay      = time.Second
	defaultSearchThreshold     = 0.3
	defaultRateLimit           = "120-M"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return FromEnv()
}

// builds a Config from the current process environment without touching .env
func FromEnv() (*Config, error) {
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	backend := StoreBackend(strings.ToLower(getString("VECTOR_STORE", string(BackendPostgres))))
	if backend != BackendPostgres && backend != BackendMemory {
		return nil, fmt.Errorf("VECTOR_STORE must be %q or %q, got %q", BackendPostgres, BackendMemory, backend)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if backend == BackendPostgres && databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	dimensions, err := getInt("EMBEDDING_DIMENSIONS", defaultEmbeddingDimensions)
	if err != nil {
		return nil, err
	}

	if dimensions <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", dimensions)
	}

	cacheSize, err := getInt("EMBEDDING_CACHE_SIZE", defaultCacheSize)
	if err != nil {
		return nil, err
	}

	batchSize, err := getInt("EMBEDDING_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		return nil, err
	}

	batchDelayMs, err := getInt("EMBEDDING_BATCH_DELAY_MS", int(defaultBatchDelay/time.Millisecond))
	if err != nil {
		return nil, err
	}

	maxRetries, err := getInt("EMBEDDING_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		return nil, err
	}

	retryBaseMs, err := getInt("EMBEDDING_RETRY_BASE_DELAY_MS", int(defaultRetryBaseDelay/time.Millisecond))
	if err != nil {
		return nil, err
	}

	cacheTTL := defaultCacheTTL
	if raw := os.Getenv("EMBEDDING_CACHE_TTL"); raw != "" {
		cacheTTL, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("EMBEDDING_CACHE_TTL: %w", err)
		}
	}

	threshold := defaultSearchThreshold
	if raw := os.Getenv("SEARCH_DEFAULT_THRESHOLD"); raw != "" {
		threshold, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("SEARCH_DEFAULT_THRESHOLD: %w", err)
		}
	}

	var origins []string
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}

	return &Config{
		Environment:         getString("ENVIRONMENT", "development"),
		Port:                getString("PORT", defaultPort),
		OpenAIKey:           openaiKey,
		EmbeddingModel:      getString("EMBEDDING_MODEL", defaultEmbeddingModel),
		EmbeddingDimensions: dimensions,
		EmbeddingBaseURL:    os.Getenv("EMBEDDING_BASE_URL"),
		CacheSize:           cacheSize,
		CacheTTL:            cacheTTL,
		BatchSize:           batchSize,
		BatchDelay:          time.Duration(batchDelayMs) * time.Millisecond,
		MaxRetries:          maxRetries,
		RetryBaseDelay:      time.Duration(retryBaseMs) * time.Millisecond,
		StoreBackend:        backend,
		DatabaseURL:         databaseURL,
		TableName:           getString("VECTOR_TABLE", defaultTableName),
		RedisURL:            os.Getenv("REDIS_URL"),
		SearchThreshold:     threshold,
		RateLimit:           getString("RATE_LIMIT", defaultRateLimit),
		CORSOrigins:         origins,
	}, nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	return val, nil
}
