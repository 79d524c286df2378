package search

import (
	"context"
	"net/http"

	"codeberg.org/hhbot/vectorstore/internal/errors"
	"codeberg.org/hhbot/vectorstore/internal/search"
	"github.com/gin-gonic/gin"
)

type Searcher interface {
	Search(ctx context.Context, req search.Request) ([]search.Hit, error)
}

// Handler runs a similarity search from query text or a query embedding
func Handler(svc Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req search.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationFailed(c, err)
			return
		}

		hits, err := svc.Search(c.Request.Context(), req)
		if err != nil {
			errors.Respond(c, "search failed", err)
			return
		}

		c.JSON(http.StatusOK, Response{Results: hits})
	}
}
