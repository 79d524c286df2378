package main

import (
	"codeberg.org/hhbot/vectorstore/api/rest/admin"
	"codeberg.org/hhbot/vectorstore/api/rest/health"
	"codeberg.org/hhbot/vectorstore/api/rest/ingest"
	"codeberg.org/hhbot/vectorstore/api/rest/records"
	"codeberg.org/hhbot/vectorstore/api/rest/search"
	"codeberg.org/hhbot/vectorstore/internal/logger"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware. Health and admin routes are never
// rate limited; everything but health answers 503 until initialization ends
func RegisterRoutes(router *gin.Engine, server *Server, limit gin.HandlerFunc) {
	router.Use(gin.Recovery(), logger.RequestLogger(), CORSMiddleware(server.config.CORSOrigins))

	store := server.services.Store

	health.RegisterRoutes(router, server.services)

	ready := router.Group("/", health.RequireReady(server.services))
	admin.RegisterRoutes(ready, store)

	limited := ready.Group("/")
	if limit != nil {
		limited.Use(limit)
	}

	{
		records.RegisterRoutes(limited, store)
		search.RegisterRoutes(limited, server.services.Search)
		ingest.RegisterRoutes(limited, server.services.Pipeline)
	}
}
