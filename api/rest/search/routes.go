package search

import "github.com/gin-gonic/gin"

func RegisterRoutes(router gin.IRoutes, svc Searcher) {
	router.POST("/search", Handler(svc))
}
