package embedder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"github.com/sashabaranov/go-openai"
)

// shared HTTP client for embedding calls
// reuses connection pool and timeout configuration
var providerHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// OpenAIProvider calls an OpenAI-compatible embeddings endpoint
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
}

func NewOpenAIProvider(apiKey, baseURL, model string, dimensions int) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.HTTPClient = providerHTTPClient

	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		dimensions: dimensions,
	}
}

func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided for embedding")
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(p.model),
		Dimensions: p.dimensions,
	})
	if err != nil {
		return nil, classifyProviderError(err)
	}

	if len(resp.Data) != len(texts) {
		return nil, &apperrors.ProviderError{
			Err: fmt.Errorf("provider returned %d embeddings for %d inputs", len(resp.Data), len(texts)),
		}
	}

	vectors := make([][]float32, len(texts))

	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, &apperrors.ProviderError{Err: fmt.Errorf("provider returned out-of-range index %d", data.Index)}
		}

		vectors[data.Index] = data.Embedding
	}

	return vectors, nil
}
