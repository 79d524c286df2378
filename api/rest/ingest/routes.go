package ingest

import "github.com/gin-gonic/gin"

func RegisterRoutes(router gin.IRoutes, pipeline Ingester) {
	router.POST("/ingest/:type", Handler(pipeline))
}
