package config

import "time"

// backend selector for the vector store
type StoreBackend string

const (
	BackendPostgres StoreBackend = "postgres"
	BackendMemory   StoreBackend = "memory"
)

type Config struct {
	Environment string
	Port        string

	// embedding provider
	OpenAIKey           string
	EmbeddingModel      string
	EmbeddingDimensions int
	EmbeddingBaseURL    string
	CacheSize           int
	CacheTTL            time.Duration
	BatchSize           int
	BatchDelay          time.Duration
	MaxRetries          int
	RetryBaseDelay      time.Duration

	// storage
	StoreBackend StoreBackend
	DatabaseURL  string
	TableName    string
	RedisURL     string

	// http surface
	SearchThreshold float64
	RateLimit       string
	CORSOrigins     []string
}

type Flags struct {
	Path         string
	Clear        bool
	SkipExisting bool
	Keyframes    bool
}

type IndexFlags struct {
	Type       string
	Partitions int
	SubVectors int
	Metric     string
}
