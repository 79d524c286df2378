package embedder

import "time"

const (
	defaultModel      = "text-embedding-3-small"
	defaultDimensions = 1536

	// upstream token limit guard; ~8k characters stays under 8191 tokens
	maxTextChars = 8000

	defaultCacheSize      = 1000
	defaultBatchSize      = 100
	defaultBatchDelay     = 100 * time.Millisecond
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second

	livenessProbeText = "liveness probe"
)
