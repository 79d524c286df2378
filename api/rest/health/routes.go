package health

import "github.com/gin-gonic/gin"

func RegisterRoutes(router gin.IRoutes, store Readiness) {
	router.GET("/health", Handler(store))
	router.GET("/ping", PingHandler)
}
