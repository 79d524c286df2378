package main

import (
	"codeberg.org/hhbot/vectorstore/internal/config"
	"codeberg.org/hhbot/vectorstore/internal/embedder"
	"codeberg.org/hhbot/vectorstore/internal/ingestion"
	"codeberg.org/hhbot/vectorstore/internal/search"
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
	"github.com/gin-gonic/gin"
)

// holds all dependencies and state for the API server
type Server struct {
	config   *config.Config
	services *Services
	router   *gin.Engine
}

// holds the store, the embedding client and the services built on them
type Services struct {
	Store    vectorstore.Store
	Embedder *embedder.Client
	Search   *search.Service
	Pipeline *ingestion.Pipeline

	// nil when REDIS_URL is unset
	Redis *embedder.RedisCache
}
