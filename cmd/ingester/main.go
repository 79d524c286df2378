package main

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/hhbot/vectorstore/internal/config"
	"codeberg.org/hhbot/vectorstore/internal/embedder"
	"codeberg.org/hhbot/vectorstore/internal/logger"
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
)

func usage() {
	fmt.Println("Usage: ingester <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  assets        - embed and store assets from a JSON file")
	fmt.Println("  create-index  - build a vector index on the embedding column")
	fmt.Println("  recreate      - drop and recreate the content table")
	fmt.Println("  count         - print the number of stored records")
	fmt.Println("\nAssets options:")
	fmt.Println("  --path <path>    - JSON array of assets (default ./resources/assets.json)")
	fmt.Println("  --clear          - recreate the table before ingesting")
	fmt.Println("  --skip-existing  - leave already stored ids untouched")
	fmt.Println("  --keyframes      - also store video keyframes")
	fmt.Println("\nIndex options:")
	fmt.Println("  --type IVF_PQ|IVF_FLAT|HNSW  --partitions N  --sub-vectors N  --metric cosine")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]

	// load environment variables
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	logger.SetDefault(logger.New(cfg.Environment, os.Getenv("LOG_LEVEL")))

	ctx := context.Background()

	store, err := vectorstore.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open vector store", "error", err)
	}

	defer store.Close()

	if err := store.EnsureTable(ctx); err != nil {
		logger.Fatal("failed to prepare content table", "table", cfg.TableName, "error", err)
	}

	logger.Info("connected to vector store", "backend", cfg.StoreBackend, "table", store.TableName())

	// route to appropriate command
	switch command {
	case "assets":
		flags := config.ParseAssetsFlags()

		client := embedder.New(embedder.ConfigFrom(cfg))
		if err := client.Initialize(ctx); err != nil {
			logger.Fatal("failed to initialize embedding client", "error", err)
		}

		if err := IngestAssets(ctx, store, client, flags); err != nil {
			logger.Fatal("failed to ingest assets", "error", err)
		}

	case "create-index":
		flags := config.ParseIndexFlags()
		if err := CreateIndex(ctx, store, flags); err != nil {
			logger.Fatal("failed to create index", "error", err)
		}

	case "recreate":
		if err := Recreate(ctx, store); err != nil {
			logger.Fatal("failed to recreate table", "error", err)
		}

	case "count":
		count, err := store.CountRows(ctx)
		if err != nil {
			logger.Fatal("failed to count records", "error", err)
		}

		fmt.Println(count)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}
