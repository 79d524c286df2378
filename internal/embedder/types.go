package embedder

import (
	"context"
	"time"

	"codeberg.org/hhbot/vectorstore/internal/config"
)

// generates raw embeddings for a list of already-preprocessed texts.
// implementations return one vector per input, in input order
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// second cache tier shared between service instances
type SharedCache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vector []float32) error
}

// holds configuration for the embedding client
type Config struct {
	APIKey     string // raw secret or a JSON blob carrying it
	BaseURL    string // optional OpenAI-compatible endpoint
	Model      string
	Dimensions int

	CacheSize  int
	BatchSize  int
	BatchDelay time.Duration

	// total provider attempts per request, including the first one
	MaxRetries     int
	RetryBaseDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = defaultModel
	}

	if c.Dimensions <= 0 {
		c.Dimensions = defaultDimensions
	}

	if c.CacheSize <= 0 {
		c.CacheSize = defaultCacheSize
	}

	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}

	if c.BatchDelay < 0 {
		c.BatchDelay = defaultBatchDelay
	}

	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}

	if c.RetryBaseDelay < 0 {
		c.RetryBaseDelay = defaultRetryBaseDelay
	}

	return c
}

// labels produced for an image asset by the labeling subsystem
type ImageLabels struct {
	Title   string   `json:"title,omitempty"`
	Prompt  string   `json:"prompt,omitempty"`
	Scenes  []string `json:"scenes,omitempty"`
	Objects []string `json:"objects,omitempty"`
	Style   []string `json:"style,omitempty"`
	Mood    []string `json:"mood,omitempty"`
	Themes  []string `json:"themes,omitempty"`
}

// labels for a video asset; keyframe descriptions follow the asset-level labels
type VideoLabels struct {
	ImageLabels
	Keyframes []string `json:"keyframes,omitempty"`
}

// labels for an audio asset
type AudioLabels struct {
	Title         string   `json:"title,omitempty"`
	Prompt        string   `json:"prompt,omitempty"`
	Lyrics        string   `json:"lyrics,omitempty"`
	Mood          []string `json:"mood,omitempty"`
	Themes        []string `json:"themes,omitempty"`
	Genre         []string `json:"genre,omitempty"`
	TempoCategory string   `json:"tempo_category,omitempty"`
}

// maps process configuration onto the client config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.EmbeddingBaseURL,
		Model:          cfg.EmbeddingModel,
		Dimensions:     cfg.EmbeddingDimensions,
		CacheSize:      cfg.CacheSize,
		BatchSize:      cfg.BatchSize,
		BatchDelay:     cfg.BatchDelay,
		MaxRetries:     cfg.MaxRetries,
		RetryBaseDelay: cfg.RetryBaseDelay,
	}
}
