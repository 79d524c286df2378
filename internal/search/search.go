// Package search answers similarity queries given either text or a
// precomputed query vector.
package search

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"codeberg.org/hhbot/vectorstore/internal/logger"
	"codeberg.org/hhbot/vectorstore/internal/references"
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
)

const (
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultThreshold = 0.3
)

type QueryEmbedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type Searcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]vectorstore.Result, error)
	Dimensions() int
}

type Request struct {
	Query          string    `json:"query,omitempty"`
	QueryEmbedding []float32 `json:"query_embedding,omitempty"`
	Limit          int       `json:"limit,omitempty"`
	Threshold      *float64  `json:"threshold,omitempty"`
	ContentTypes   []string  `json:"content_types,omitempty"`
}

type Hit struct {
	ID             string         `json:"id"`
	ContentType    string         `json:"content_type"`
	Title          *string        `json:"title"`
	Score          float64        `json:"score"`
	SearchableText *string        `json:"searchable_text"`
	References     map[string]any `json:"references"`
}

type Service struct {
	embedder  QueryEmbedder
	store     Searcher
	threshold float64
}

// a threshold outside [-1, 1] falls back to DefaultThreshold
func New(e QueryEmbedder, store Searcher, threshold float64) *Service {
	if math.IsNaN(threshold) || threshold < -1 || threshold > 1 {
		threshold = DefaultThreshold
	}

	return &Service{embedder: e, store: store, threshold: threshold}
}

// returns hits scoring at or above the threshold, best first. A precomputed
// query embedding takes precedence over query text.
func (s *Service) Search(ctx context.Context, req Request) ([]Hit, error) {
	vector, err := s.queryVector(ctx, req)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	limit = min(limit, MaxLimit)

	threshold := s.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	results, err := s.store.Search(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	hits := make([]Hit, 0, len(results))

	for _, r := range results {
		if r.Score < threshold {
			continue
		}

		if len(req.ContentTypes) > 0 && !slices.Contains(req.ContentTypes, r.ContentType) {
			continue
		}

		hits = append(hits, Hit{
			ID:             r.ID,
			ContentType:    r.ContentType,
			Title:          r.Title,
			Score:          r.Score,
			SearchableText: r.SearchableText,
			References:     references.DecodeLoose(r.References),
		})
	}

	logger.Debug("search completed",
		"by_vector", len(req.QueryEmbedding) > 0,
		"candidates", len(results),
		"hits", len(hits),
		"threshold", threshold,
	)

	return hits, nil
}

func (s *Service) queryVector(ctx context.Context, req Request) ([]float32, error) {
	dims := s.store.Dimensions()

	if len(req.QueryEmbedding) > 0 {
		if len(req.QueryEmbedding) != dims {
			return nil, apperrors.DimensionMismatch("query_embedding", dims, len(req.QueryEmbedding))
		}

		return req.QueryEmbedding, nil
	}

	if strings.TrimSpace(req.Query) == "" {
		return nil, apperrors.Validation("query", "query or query_embedding is required")
	}

	vector, err := s.embedder.GenerateEmbedding(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	if len(vector) != dims {
		return nil, &apperrors.ProviderError{
			Err: fmt.Errorf("query embedding has %d dimensions, store expects %d", len(vector), dims),
		}
	}

	return vector, nil
}
