package admin

import (
	"fmt"
	"net/http"
	"strings"

	"codeberg.org/hhbot/vectorstore/internal/errors"
	"codeberg.org/hhbot/vectorstore/internal/logger"
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
	"github.com/gin-gonic/gin"
)

// SchemaHandler renders the live table schema as plain text, followed by the
// result of verifying it against the expected definition
func SchemaHandler(store vectorstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		columns, err := store.Schema(c.Request.Context())
		if err != nil {
			errors.Respond(c, "failed to read schema", err)
			return
		}

		var b strings.Builder
		b.WriteString(vectorstore.RenderSchema(store.TableName(), columns))

		if err := vectorstore.VerifySchema(store.TableName(), vectorstore.Definition(store.Dimensions()), columns); err != nil {
			fmt.Fprintf(&b, "\nstatus: mismatch (%v)\n", err)
		} else {
			b.WriteString("\nstatus: ok\n")
		}

		c.String(http.StatusOK, b.String())
	}
}

// CreateIndexHandler builds the vector index; zero fields take the defaults
func CreateIndexHandler(store vectorstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateIndexRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationFailed(c, err)
			return
		}

		opts := vectorstore.DefaultIndexOptions()

		if req.Type != "" {
			opts.Type = vectorstore.IndexType(req.Type)
		}

		if req.NumPartitions != 0 {
			opts.Partitions = req.NumPartitions
		}

		if req.NumSubVectors != 0 {
			opts.SubVectors = req.NumSubVectors
		}

		if req.MetricType != "" {
			opts.Metric = vectorstore.Metric(req.MetricType)
		}

		column := req.Column
		if column == "" {
			column = vectorstore.EmbeddingColumn
		}

		if err := store.CreateIndex(c.Request.Context(), column, opts); err != nil {
			errors.Respond(c, "failed to create index", err)
			return
		}

		c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}
}

// RecreateHandler drops every record and recreates the table
func RecreateHandler(store vectorstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.FromContext(c.Request.Context()).Warn("recreating vector table", "table", store.TableName())

		if err := store.RecreateTable(c.Request.Context()); err != nil {
			errors.Respond(c, "failed to recreate table", err)
			return
		}

		c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "table recreated"})
	}
}
