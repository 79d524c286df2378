package errors

import (
	"errors"
	"net/http"
	"strings"

	"codeberg.org/hhbot/vectorstore/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.Respond() for errors returned by services; it maps the domain
//     taxonomy (validation, not found, provider, schema) onto status codes
//   - Use errors.BadRequest(), errors.ValidationFailed() for binding failures
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For services/stores/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Return the domain types from domain.go for caller-visible failure classes
//   - Do not log errors in non-handler code (avoid double logging)

// returns a 404 not found error
func NotFoundResponse(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func ValidationFailed(c *gin.Context, err error) {
	message := "validation failed"
	details := ""

	if err != nil {
		details = err.Error()
		if strings.Contains(details, "binding") || strings.Contains(details, "json") {
			message = "request validation failed"
		}
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: message,
		Details: details,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	logger.FromContext(c.Request.Context()).Error(message,
		"error", err,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: sanitizeError(err),
	})
}

// returns a 429 when a client exceeds the request rate
func TooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: "rate limit exceeded, slow down",
	})
}

// returns a 503 while the store is still initializing
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "service unavailable"
	}

	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error:   CodeServiceUnavailable,
		Message: message,
	})
}

// maps a service error onto the matching HTTP response.
// message is used for the 5xx cases
func Respond(c *gin.Context, message string, err error) {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var providerErr *ProviderError
	var schemaErr *SchemaError

	switch {
	case errors.As(err, &validationErr):
		ValidationFailed(c, validationErr)

	case errors.As(err, &notFoundErr):
		NotFoundResponse(c, notFoundErr.Resource)

	case errors.As(err, &providerErr):
		logger.FromContext(c.Request.Context()).Error(message,
			"error", err,
			"status_code", providerErr.StatusCode,
			"attempts", providerErr.Attempts,
		)

		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   CodeProviderError,
			Message: "embedding provider request failed",
			Details: sanitizeError(err),
		})

	case errors.As(err, &schemaErr):
		logger.FromContext(c.Request.Context()).Error(message, "error", err)

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   CodeSchemaError,
			Message: "table schema does not match definition",
			Details: sanitizeError(err),
		})

	default:
		InternalError(c, message, err)
	}
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}
