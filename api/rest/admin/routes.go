package admin

import (
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router gin.IRouter, store vectorstore.Store) {
	router.GET("/debug/schema", SchemaHandler(store))
	router.POST("/create-index", CreateIndexHandler(store))

	admin := router.Group("/admin")
	admin.POST("/recreate", RecreateHandler(store))
}
