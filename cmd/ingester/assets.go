package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"codeberg.org/hhbot/vectorstore/internal/config"
	"codeberg.org/hhbot/vectorstore/internal/ingestion"
	"codeberg.org/hhbot/vectorstore/internal/logger"
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
)

// embeds and stores every asset in the file at flags.Path
func IngestAssets(ctx context.Context, store vectorstore.Store, e ingestion.Embedder, flags config.Flags) error {
	logger.Info("starting asset ingestion",
		"path", flags.Path,
		"clear", flags.Clear,
		"skip_existing", flags.SkipExisting,
		"keyframes", flags.Keyframes,
	)

	assets, err := loadAssets(flags.Path)
	if err != nil {
		return err
	}

	if len(assets) == 0 {
		return fmt.Errorf("no assets found in %s", flags.Path)
	}

	logger.Info("loaded assets", "count", len(assets))

	// clear existing records if requested
	if flags.Clear {
		logger.Info("recreating content table", "table", store.TableName())

		if err := store.RecreateTable(ctx); err != nil {
			return fmt.Errorf("failed to clear existing records: %w", err)
		}
	}

	before, err := store.CountRows(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	pipeline := ingestion.New(e, store, ingestion.Options{
		IngestKeyframes: flags.Keyframes,
		SkipExisting:    flags.SkipExisting,
	})

	report := pipeline.IngestMany(ctx, assets)

	for _, failure := range report.Failed {
		logger.Warn("asset failed", "index", failure.Index, "id", failure.ID, "error", failure.Err)
	}

	keyframes := 0
	for _, res := range report.Results {
		keyframes += res.Keyframes
	}

	// verify insertion
	after, err := store.CountRows(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify record count: %w", err)
	}

	logger.Info("finished asset ingestion",
		"ingested", report.Ingested(),
		"skipped", report.Skipped(),
		"failed", len(report.Failed),
		"keyframes", keyframes,
		"records_before", before,
		"records_after", after,
	)

	if len(report.Failed) == len(assets) {
		return fmt.Errorf("all %d assets failed", len(assets))
	}

	return nil
}

func loadAssets(path string) ([]ingestion.Asset, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path is an operator-supplied flag
	if err != nil {
		return nil, fmt.Errorf("failed to read assets file: %w", err)
	}

	var assets []ingestion.Asset
	if err := json.Unmarshal(raw, &assets); err != nil {
		return nil, fmt.Errorf("failed to parse assets file %s: %w", path, err)
	}

	return assets, nil
}
