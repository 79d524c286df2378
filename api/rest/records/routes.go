package records

import (
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router gin.IRoutes, store vectorstore.Store) {
	router.POST("/add", AddHandler(store))
	router.GET("/count", CountHandler(store))

	router.GET("/records", ListHandler(store))
	router.GET("/records/:id", GetHandler(store))
	router.PUT("/records/:id", UpdateHandler(store))
	router.DELETE("/records/:id", DeleteHandler(store))
}
