package ingest

import (
	"context"
	"net/http"

	"codeberg.org/hhbot/vectorstore/internal/errors"
	"codeberg.org/hhbot/vectorstore/internal/ingestion"
	"github.com/gin-gonic/gin"
)

type Ingester interface {
	Ingest(ctx context.Context, asset ingestion.Asset) (ingestion.Result, error)
}

// Handler embeds and stores one asset of the type named in the path
func Handler(pipeline Ingester) gin.HandlerFunc {
	return func(c *gin.Context) {
		var asset ingestion.Asset
		if err := c.ShouldBindJSON(&asset); err != nil {
			errors.ValidationFailed(c, err)
			return
		}

		asset.Type = c.Param("type")

		result, err := pipeline.Ingest(c.Request.Context(), asset)
		if err != nil {
			errors.Respond(c, "failed to ingest asset", err)
			return
		}

		c.JSON(http.StatusOK, Response{
			Success:     true,
			ID:          result.ID,
			ContentHash: result.ContentHash,
			Skipped:     result.Skipped,
			Keyframes:   result.Keyframes,
		})
	}
}
