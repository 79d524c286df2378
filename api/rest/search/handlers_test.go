package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"codeberg.org/hhbot/vectorstore/internal/search"
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubEmbedder struct {
	err error
}

func (s stubEmbedder) GenerateEmbedding(context.Context, string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}

	return []float32{1, 0, 0}, nil
}

func setupRouter(t *testing.T, embedder search.QueryEmbedder) *gin.Engine {
	t.Helper()

	store := vectorstore.NewMemoryStore("", 3)
	ctx := context.Background()
	require.NoError(t, store.EnsureTable(ctx))
	require.NoError(t, store.AddBatch(ctx, []vectorstore.Record{
		{ID: "match", ContentType: "audio", Embedding: []float32{1, 0, 0}, References: `{"type":"audio","asset_id":"match"}`},
		{ID: "miss", ContentType: "image", Embedding: []float32{0, 1, 0}},
	}))

	router := gin.New()
	RegisterRoutes(router, search.New(embedder, store, search.DefaultThreshold))

	return router
}

func post(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestSearchHandler(t *testing.T) {
	router := setupRouter(t, stubEmbedder{})

	w := post(router, `{"query":"night walk","limit":5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Results, 1)
	hit := resp.Results[0]
	assert.Equal(t, "match", hit["id"])
	assert.Equal(t, "audio", hit["content_type"])
	assert.InDelta(t, 1.0, hit["score"], 1e-6)
	assert.Equal(t, map[string]any{"type": "audio", "asset_id": "match"}, hit["references"])
	assert.Contains(t, hit, "title")
	assert.Contains(t, hit, "searchable_text")
}

func TestSearchHandler_EmptyResultsIsArray(t *testing.T) {
	router := setupRouter(t, stubEmbedder{})

	w := post(router, `{"query_embedding":[0,0,1]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results":[]}`, w.Body.String())
}

func TestSearchHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		embedder stubEmbedder
		body     string
		status   int
	}{
		{name: "no query", body: `{}`, status: http.StatusBadRequest},
		{name: "wrong dimension", body: `{"query_embedding":[1,0]}`, status: http.StatusBadRequest},
		{name: "malformed", body: `{"query":`, status: http.StatusBadRequest},
		{
			name:     "provider down",
			embedder: stubEmbedder{err: &apperrors.ProviderError{StatusCode: 503, Err: errors.New("down")}},
			body:     `{"query":"x"}`,
			status:   http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, tt.embedder)

			w := post(router, tt.body)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
