package main

import (
	"context"
	"fmt"

	"codeberg.org/hhbot/vectorstore/internal/config"
	"codeberg.org/hhbot/vectorstore/internal/logger"
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
)

// builds the vector index described by the create-index flags
func CreateIndex(ctx context.Context, store vectorstore.Store, flags config.IndexFlags) error {
	opts := vectorstore.IndexOptions{
		Type:       vectorstore.IndexType(flags.Type),
		Partitions: flags.Partitions,
		SubVectors: flags.SubVectors,
		Metric:     vectorstore.Metric(flags.Metric),
	}

	logger.Info("creating index",
		"table", store.TableName(),
		"type", flags.Type,
		"partitions", flags.Partitions,
		"sub_vectors", flags.SubVectors,
		"metric", flags.Metric,
	)

	if err := store.CreateIndex(ctx, vectorstore.EmbeddingColumn, opts); err != nil {
		return err
	}

	logger.Info("index created", "table", store.TableName())

	return nil
}

// drops every record by recreating the table
func Recreate(ctx context.Context, store vectorstore.Store) error {
	before, err := store.CountRows(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	if err := store.RecreateTable(ctx); err != nil {
		return err
	}

	logger.Info("recreated content table", "table", store.TableName(), "records_dropped", before)

	return nil
}
