package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "vectorstore"

// Readiness reports whether the table has been opened and verified
type Readiness interface {
	Ready() bool
}

// healthy once the store is ready, 503 while it is still initializing
func Handler(store Readiness) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !store.Ready() {
			c.JSON(http.StatusServiceUnavailable, Response{
				Status:  "initializing",
				Service: serviceName,
			})
			return
		}

		now := time.Now().UTC()

		c.JSON(http.StatusOK, Response{
			Status:    "healthy",
			Service:   serviceName,
			Timestamp: &now,
		})
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}

// rejects requests with 503 until every check reports ready
func RequireReady(checks ...Readiness) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, check := range checks {
			if !check.Ready() {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, Response{
					Status:  "initializing",
					Service: serviceName,
				})
				return
			}
		}

		c.Next()
	}
}
