package embedder

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"codeberg.org/hhbot/vectorstore/internal/logger"
	"golang.org/x/time/rate"
)

// Client turns text into fixed-length vectors. It owns the embedding cache
// and the retry policy for provider calls.
type Client struct {
	config   Config
	provider Provider
	cache    *FIFOCache
	shared   SharedCache

	initOnce sync.Once
	initErr  error

	// set once provider is safe to read from any goroutine
	ready atomic.Bool
}

type Option func(*Client)

// injects a provider instead of the OpenAI one built during Initialize
func WithProvider(p Provider) Option {
	return func(c *Client) {
		c.provider = p
	}
}

// adds a second cache tier consulted after the in-memory cache
func WithSharedCache(sc SharedCache) Option {
	return func(c *Client) {
		c.shared = sc
	}
}

func New(config Config, opts ...Option) *Client {
	config = config.withDefaults()

	c := &Client{
		config: config,
		cache:  NewFIFOCache(config.CacheSize),
	}

	for _, opt := range opts {
		opt(c)
	}

	// an injected provider is usable before Initialize
	if c.provider != nil {
		c.ready.Store(true)
	}

	return c
}

// resolves credentials, builds the provider and runs one liveness probe.
// Safe to call more than once; only the first call does any work
func (c *Client) Initialize(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.initialize(ctx)
	})

	return c.initErr
}

func (c *Client) initialize(ctx context.Context) error {
	if c.provider == nil {
		apiKey, err := ResolveAPIKey(c.config.APIKey)
		if err != nil {
			return fmt.Errorf("failed to resolve embedding credentials: %w", err)
		}

		c.provider = NewOpenAIProvider(apiKey, c.config.BaseURL, c.config.Model, c.config.Dimensions)
	}

	vectors, err := c.provider.Embed(ctx, []string{livenessProbeText})
	if err != nil {
		return fmt.Errorf("embedding liveness probe failed: %w", classifyProviderError(err))
	}

	if len(vectors) != 1 || len(vectors[0]) != c.config.Dimensions {
		got := 0
		if len(vectors) == 1 {
			got = len(vectors[0])
		}

		return &apperrors.ProviderError{
			Err: fmt.Errorf("liveness probe returned %d vectors of length %d, want 1 of length %d",
				len(vectors), got, c.config.Dimensions),
		}
	}

	logger.Info("embedding client initialized",
		"model", c.config.Model,
		"dimensions", c.config.Dimensions,
		"cache_size", c.config.CacheSize,
		"shared_cache", c.shared != nil,
	)

	c.ready.Store(true)

	return nil
}

// reports whether embeddings can be generated
func (c *Client) Ready() bool {
	return c.ready.Load()
}

func (c *Client) Dimensions() int {
	return c.config.Dimensions
}

func (c *Client) Model() string {
	return c.config.Model
}

// number of vectors held in the in-memory cache
func (c *Client) CacheLen() int {
	return c.cache.Len()
}

// returns the embedding for a single text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if !c.ready.Load() {
		return nil, fmt.Errorf("embedding client not initialized")
	}

	processed, err := preprocessInput("text", text)
	if err != nil {
		return nil, err
	}

	key := CacheKey(c.config.Model, processed)

	if vector, ok := c.lookup(ctx, key); ok {
		return vector, nil
	}

	vectors, err := c.embedWithRetry(ctx, []string{processed})
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, vectors[0])

	return vectors[0], nil
}

// embeds many texts. Each batch of BatchSize texts resolves cache hits locally
// and sends only the misses in one provider request; dispatched batches are
// spaced by BatchDelay. Output order matches input order.
func (c *Client) GenerateEmbeddingsBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.ready.Load() {
		return nil, fmt.Errorf("embedding client not initialized")
	}

	processed := make([]string, len(texts))

	for i, text := range texts {
		p, err := preprocessInput(fmt.Sprintf("texts[%d]", i), text)
		if err != nil {
			return nil, err
		}

		processed[i] = p
	}

	limit := rate.Inf
	if c.config.BatchDelay > 0 {
		limit = rate.Every(c.config.BatchDelay)
	}

	limiter := rate.NewLimiter(limit, 1)
	results := make([][]float32, len(texts))

	for start := 0; start < len(processed); start += c.config.BatchSize {
		end := min(start+c.config.BatchSize, len(processed))

		if err := c.embedBatch(ctx, limiter, processed, results, start, end); err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end-1, err)
		}
	}

	return results, nil
}

func (c *Client) embedBatch(ctx context.Context, limiter *rate.Limiter, processed []string, results [][]float32, start, end int) error {
	// unique cache misses in first-seen order, with the result slots they fill
	var missKeys []string
	var missTexts []string
	slots := make(map[string][]int)

	for i := start; i < end; i++ {
		key := CacheKey(c.config.Model, processed[i])

		if vector, ok := c.lookup(ctx, key); ok {
			results[i] = vector
			continue
		}

		if _, seen := slots[key]; !seen {
			missKeys = append(missKeys, key)
			missTexts = append(missTexts, processed[i])
		}

		slots[key] = append(slots[key], i)
	}

	if len(missTexts) == 0 {
		return nil
	}

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting between batches: %w", err)
	}

	vectors, err := c.embedWithRetry(ctx, missTexts)
	if err != nil {
		return err
	}

	for j, key := range missKeys {
		c.store(ctx, key, vectors[j])

		for _, slot := range slots[key] {
			results[slot] = cloneVector(vectors[j])
		}
	}

	logger.Debug("embedded batch",
		"batch_start", start,
		"batch_size", end-start,
		"cache_misses", len(missTexts),
	)

	return nil
}

func (c *Client) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := withRetry(ctx, c.config.MaxRetries, c.config.RetryBaseDelay,
		func(ctx context.Context) ([][]float32, error) {
			return c.provider.Embed(ctx, texts)
		})
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(texts) {
		return nil, &apperrors.ProviderError{
			Err: fmt.Errorf("provider returned %d embeddings for %d inputs", len(vectors), len(texts)),
		}
	}

	for i, vector := range vectors {
		if len(vector) != c.config.Dimensions {
			return nil, &apperrors.ProviderError{
				Err: fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(vector), c.config.Dimensions),
			}
		}
	}

	return vectors, nil
}

func (c *Client) lookup(ctx context.Context, key string) ([]float32, bool) {
	if vector, ok := c.cache.Get(key); ok {
		return vector, true
	}

	if c.shared == nil {
		return nil, false
	}

	vector, ok, err := c.shared.Get(ctx, key)
	if err != nil {
		logger.Warn("shared embedding cache read failed", "error", err)
		return nil, false
	}

	if !ok || len(vector) != c.config.Dimensions {
		return nil, false
	}

	c.cache.Set(key, vector)

	return vector, true
}

func (c *Client) store(ctx context.Context, key string, vector []float32) {
	c.cache.Set(key, vector)

	if c.shared == nil {
		return
	}

	if err := c.shared.Set(ctx, key, vector); err != nil {
		logger.Warn("shared embedding cache write failed", "error", err)
	}
}
