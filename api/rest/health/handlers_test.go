package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type readiness bool

func (r readiness) Ready() bool { return bool(r) }

func get(t *testing.T, ready bool) (int, Response) {
	t.Helper()

	router := gin.New()
	RegisterRoutes(router, readiness(ready))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return w.Code, resp
}

func TestHealth_Healthy(t *testing.T) {
	code, resp := get(t, true)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp.Status)
	assert.NotNil(t, resp.Timestamp)
}

func TestHealth_Initializing(t *testing.T) {
	code, resp := get(t, false)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "initializing", resp.Status)
	assert.Nil(t, resp.Timestamp)
}

func TestRequireReady(t *testing.T) {
	tests := []struct {
		name     string
		checks   []Readiness
		expected int
	}{
		{"no checks", nil, http.StatusOK},
		{"all ready", []Readiness{readiness(true), readiness(true)}, http.StatusOK},
		{"one initializing", []Readiness{readiness(true), readiness(false)}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/data", RequireReady(tt.checks...), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/data", nil))

			assert.Equal(t, tt.expected, w.Code)

			if tt.expected == http.StatusServiceUnavailable {
				var resp Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "initializing", resp.Status)
			}
		})
	}
}
