package records

import (
	"net/http"

	"codeberg.org/hhbot/vectorstore/api/rest/pagination"
	"codeberg.org/hhbot/vectorstore/internal/errors"
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
	"github.com/gin-gonic/gin"
)

const (
	defaultListLimit = 100
	maxListLimit     = 10000
)

// AddHandler stores a record with a precomputed embedding
func AddHandler(store vectorstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationFailed(c, err)
			return
		}

		refs, err := normalizeReferences(req.References)
		if err != nil {
			errors.Respond(c, "failed to add record", err)
			return
		}

		err = store.Add(c.Request.Context(), vectorstore.Record{
			ID:             req.ID,
			ContentType:    req.ContentType,
			Title:          req.Title,
			Embedding:      req.Embedding,
			SearchableText: req.SearchableText,
			ContentHash:    req.ContentHash,
			References:     refs,
		})
		if err != nil {
			errors.Respond(c, "failed to add record", err)
			return
		}

		c.JSON(http.StatusOK, AddResponse{Success: true, ID: req.ID})
	}
}

// CountHandler returns the number of stored records
func CountHandler(store vectorstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := store.CountRows(c.Request.Context())
		if err != nil {
			errors.Respond(c, "failed to count records", err)
			return
		}

		c.JSON(http.StatusOK, CountResponse{Count: count})
	}
}

// GetHandler returns one record including its embedding
func GetHandler(store vectorstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := store.GetRecord(c.Request.Context(), c.Param("id"))
		if err != nil {
			errors.Respond(c, "failed to get record", err)
			return
		}

		if rec == nil {
			errors.NotFoundResponse(c, "record")
			return
		}

		c.JSON(http.StatusOK, toResponse(*rec, true))
	}
}

// UpdateHandler merges the given fields into an existing record
func UpdateHandler(store vectorstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationFailed(c, err)
			return
		}

		update := vectorstore.RecordUpdate{
			ContentType:    req.ContentType,
			Title:          req.Title,
			Embedding:      req.Embedding,
			SearchableText: req.SearchableText,
			ContentHash:    req.ContentHash,
		}

		if len(req.References) > 0 {
			refs, err := normalizeReferences(req.References)
			if err != nil {
				errors.Respond(c, "failed to update record", err)
				return
			}

			update.References = &refs
		}

		rec, err := store.UpdateRecord(c.Request.Context(), c.Param("id"), update)
		if err != nil {
			errors.Respond(c, "failed to update record", err)
			return
		}

		c.JSON(http.StatusOK, toResponse(*rec, true))
	}
}

// DeleteHandler removes a record; deleting an unknown id still succeeds
func DeleteHandler(store vectorstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
			errors.Respond(c, "failed to delete record", err)
			return
		}

		c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}
}

// ListHandler exports records without their embeddings
func ListHandler(store vectorstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, err := pagination.Parse(c.Query("limit"), c.Query("offset"), defaultListLimit, maxListLimit)
		if err != nil {
			errors.Respond(c, "invalid pagination", err)
			return
		}

		ctx := c.Request.Context()

		total, err := store.CountRows(ctx)
		if err != nil {
			errors.Respond(c, "failed to count records", err)
			return
		}

		results, err := store.GetAllRecords(ctx, params.Offset+params.Limit)
		if err != nil {
			errors.Respond(c, "failed to list records", err)
			return
		}

		page := []RecordResponse{}

		for i := params.Offset; i < len(results); i++ {
			page = append(page, toResponse(results[i].Record, false))
		}

		c.JSON(http.StatusOK, ListResponse{
			Records:    page,
			Pagination: pagination.NewMeta(params, total),
		})
	}
}
