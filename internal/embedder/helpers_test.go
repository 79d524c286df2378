package embedder

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const testDims = 8

// deterministic vector for a text
func vectorFor(text string, dims int) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text)) //nolint:errcheck,gosec // hash writes never fail
	seed := h.Sum64()

	v := make([]float32, dims)
	for i := range v {
		v[i] = float32((seed>>(uint(i)%56))&0xff) / 255
	}

	return v
}

// implements Provider for testing
type fakeProvider struct {
	mu       sync.Mutex
	dims     int
	calls    [][]string
	failures []error // returned, in order, before any success
}

func newFakeProvider(dims int, failures ...error) *fakeProvider {
	return &fakeProvider{dims: dims, failures: failures}
}

func (f *fakeProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]string(nil), texts...))

	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = vectorFor(text, f.dims)
	}

	return out, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func testClient(provider Provider, opts ...func(*Config)) *Client {
	cfg := Config{
		Model:          "test-model",
		Dimensions:     testDims,
		CacheSize:      100,
		BatchSize:      3,
		BatchDelay:     0,
		MaxRetries:     3,
		RetryBaseDelay: 0,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return New(cfg, WithProvider(provider))
}

type openAIRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions"`
}

// starts a server that speaks the OpenAI embeddings wire format.
// status, when non-nil, decides the HTTP status for the n-th request (1-based)
func newOpenAIServer(t *testing.T, dims int, status func(n int) int) (*httptest.Server, *[]string) {
	t.Helper()

	var mu sync.Mutex
	var authHeaders []string
	requests := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		n := requests
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		mu.Unlock()

		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if status != nil {
			if code := status(n); code != http.StatusOK {
				w.WriteHeader(code)
				w.Write([]byte(`{"error":{"message":"upstream unhappy","type":"server_error"}}`)) //nolint:errcheck,gosec // test server
				return
			}
		}

		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		data := make([]map[string]any, len(req.Input))
		for i, text := range req.Input {
			data[i] = map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": vectorFor(text, dims),
			}
		}

		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck,gosec // test server
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))

	t.Cleanup(srv.Close)

	return srv, &authHeaders
}
